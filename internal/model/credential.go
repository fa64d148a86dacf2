package model

// Credential is one stored user→token record. Login is the unique key.
type Credential struct {
	Login string `json:"login"`
	Key   string `json:"key"`
}
