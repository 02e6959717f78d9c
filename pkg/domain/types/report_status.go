package types

import "fmt"

// ReportStatus represents the lifecycle status of a risk report
type ReportStatus string

const (
	ReportStatusOpen         ReportStatus = "OPEN"
	ReportStatusInProgress   ReportStatus = "IN_PROGRESS"
	ReportStatusClosed       ReportStatus = "CLOSED"
	ReportStatusCancelled    ReportStatus = "CANCELLED"
	ReportStatusConsolidated ReportStatus = "CONSOLIDATED"
)

// AllReportStatuses returns all valid report statuses
func AllReportStatuses() []ReportStatus {
	return []ReportStatus{
		ReportStatusOpen,
		ReportStatusInProgress,
		ReportStatusClosed,
		ReportStatusCancelled,
		ReportStatusConsolidated,
	}
}

// IsValid checks if the report status is valid
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusOpen,
		ReportStatusInProgress,
		ReportStatusClosed,
		ReportStatusCancelled,
		ReportStatusConsolidated:
		return true
	default:
		return false
	}
}

// IsActive is true for reports that are still being worked on
func (s ReportStatus) IsActive() bool {
	return s.Normalize() == ReportStatusOpen || s == ReportStatusInProgress
}

// Normalize returns the status, treating empty as ReportStatusOpen
func (s ReportStatus) Normalize() ReportStatus {
	if s == "" {
		return ReportStatusOpen
	}
	return s
}

// String returns the string representation of the report status
func (s ReportStatus) String() string {
	return string(s)
}

// ParseReportStatus parses a string into a ReportStatus
func ParseReportStatus(s string) (ReportStatus, error) {
	status := ReportStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid report status: %s", s)
	}
	return status, nil
}
