package audit

type EntriesResponse struct {
	Entries []*Entry `json:"entries"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}
