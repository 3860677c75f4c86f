package models

// StoredTransaction is a previously imported transaction as the repository
// returns it: the normalized fields plus its row identity and the import that
// created it.
type StoredTransaction struct {
	ID       int64  `json:"id"`
	ImportID string `json:"import_id"`
	ParsedTransaction
}
