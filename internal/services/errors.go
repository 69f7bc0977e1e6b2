package services

import (
	apierrors "marksight/internal/errors"
)

// Results service errors. The dataset-domain sentinels are shared with
// the errors package so the transport layer can map them to RFC 7807
// responses with errors.Is.
var (
	// Dataset errors
	ErrNoDataset       = apierrors.ErrNoDatasetLoaded
	ErrEmptyDataset    = apierrors.ErrDatasetEmpty
	ErrStudentNotFound = apierrors.ErrStudentMissing

	// Upload errors
	ErrInvalidFileType = apierrors.ErrUnsupportedFileType
)
