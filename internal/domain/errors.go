package domain

import "errors"

var (
	ErrNotNushellScript   = errors.New("not a Nushell script (.nu)")
	ErrNoWorkspace        = errors.New("no workspace folder found")
	ErrMetricsUnavailable = errors.New("no metrics data available")
)
