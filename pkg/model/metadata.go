package model

// Metadata is the per-document JSON served by the mirrors.
type Metadata struct {
	Title string `json:"title"`
	Items []Item `json:"ti_items"`
}

// Item is one entry of the document's resource bundle.
type Item struct {
	Format   string   `json:"ti_format"`
	Storages []string `json:"ti_storages"`
}

// ArtifactDescriptor is the artifact chosen from Metadata for download.
type ArtifactDescriptor struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Format string `json:"format"`
}

// TitleOr returns the metadata title, or fallback when the title is empty.
func (m *Metadata) TitleOr(fallback string) string {
	if m == nil || m.Title == "" {
		return fallback
	}
	return m.Title
}
