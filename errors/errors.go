package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrNotReady        = fmt.Errorf("question catalog is still loading")
	ErrEmptyCatalog    = fmt.Errorf("not enough countries loaded to draw a question")
	ErrUnknownRoom     = fmt.Errorf("room does not exist")
	ErrStaleSubmission = fmt.Errorf("submission ignored for an inactive round")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
)
