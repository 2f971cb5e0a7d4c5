// internal/domain/alert/errors.go
package alert

import "errors"

// Delivery conditions. All of them are absorbed by the component that raises
// them; a tick never aborts because of one.
var (
	ErrPermissionDenied    = errors.New("alert surface refused permission")
	ErrAssetUnavailable    = errors.New("audio asset unavailable")
	ErrDecodeError         = errors.New("audio asset could not be decoded")
	ErrDeliveryUnreachable = errors.New("no foreground context and no background playback on this host")
)

// Repository errors.
var ErrMessageNotFound = errors.New("notification record not found")
