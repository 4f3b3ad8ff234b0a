package model

import "time"

// ReportKind names a generated report.
type ReportKind string

const (
	ReportSubmissions ReportKind = "submissions"
	ReportFiltered    ReportKind = "submissions-filtered"
	ReportStats       ReportKind = "submissions-stats"
	ReportFarmers     ReportKind = "farmers"
	ReportComparison  ReportKind = "yield-comparison"
)

// ExportRecord is an audit entry for a generated report file.
type ExportRecord struct {
	ID        string     `json:"id"`
	Kind      ReportKind `json:"kind"`
	Filename  string     `json:"filename"`
	Rows      int        `json:"rows"`
	Source    string     `json:"source"` // "backend", "cache" or an input file path
	CreatedAt time.Time  `json:"created_at"`
}

// Session is the signed-in user as returned by the login endpoint.
type Session struct {
	Token    string `json:"token" yaml:"token"`
	Role     string `json:"role" yaml:"role"`
	Fullname string `json:"fullname" yaml:"fullname"`
	Phone    string `json:"phone" yaml:"phone"`
}

// IsAdmin reports whether the session may use admin endpoints.
func (s Session) IsAdmin() bool { return s.Role == "admin" }
