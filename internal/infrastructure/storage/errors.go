package storage

import "errors"

// ErrLesionNotFound очаг без записей в истории
var ErrLesionNotFound = errors.New("lesion not found")
