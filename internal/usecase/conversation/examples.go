package conversation

// ExampleQueries are offered on an empty transcript.
var ExampleQueries = []string{
	"What is SIDBI Fund of Funds?",
	"स्टार्टअप इंडिया योजना क्या है?",
	"List top investors in fintech",
}
