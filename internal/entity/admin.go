package entity

import "fmt"

type DocumentType string

const (
	DocumentTypePDF   DocumentType = "pdf"
	DocumentTypeDOCX  DocumentType = "docx"
	DocumentTypeTXT   DocumentType = "txt"
	DocumentTypeCSV   DocumentType = "csv"
	DocumentTypeExcel DocumentType = "excel"
	DocumentTypeWeb   DocumentType = "web"
)

func (dt DocumentType) Validate() error {
	switch dt {
	case DocumentTypePDF, DocumentTypeDOCX, DocumentTypeTXT, DocumentTypeCSV, DocumentTypeExcel, DocumentTypeWeb:
		return nil
	default:
		return fmt.Errorf("%w: unknown document type %q", ErrInvalidDocument, dt)
	}
}

type IngestRequest struct {
	FilePath     string         `json:"file_path"`
	DocumentType DocumentType   `json:"document_type"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type IngestResult struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	ChunksCreated int     `json:"chunks_created"`
	DocumentID    *string `json:"document_id,omitempty"`
}

type ReindexRequest struct {
	RebuildFAISS bool `json:"rebuild_faiss"`
	RebuildBM25  bool `json:"rebuild_bm25"`
}

type ReindexResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	FAISSDocuments int    `json:"faiss_documents"`
	BM25Documents  int    `json:"bm25_documents"`
}

type Stats struct {
	TotalDocuments     int      `json:"total_documents"`
	TotalChunks        int      `json:"total_chunks"`
	FAISSIndexSizeMB   float64  `json:"faiss_index_size_mb"`
	BM25IndexSizeMB    float64  `json:"bm25_index_size_mb"`
	SupportedLanguages []string `json:"supported_languages"`
	EmbeddingModel     string   `json:"embedding_model"`
}

// Health is the liveness payload of GET /health; its shape is backend-defined.
type Health map[string]any
