package pipeline

import (
	"errors"

	"github.com/dmitrijs2005/skincare/internal/client/models"
	"github.com/dmitrijs2005/skincare/internal/common"
)

// State is the phase of one session's classification workflow.
type State int

const (
	Loading State = iota
	NoImage
	HasResult
	Uploading
	Classified
	UploadFailed
	LoadFailed
	Unconfirmed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case NoImage:
		return "no_image"
	case HasResult:
		return "has_result"
	case Uploading:
		return "uploading"
	case Classified:
		return "classified"
	case UploadFailed:
		return "upload_failed"
	case LoadFailed:
		return "load_failed"
	case Unconfirmed:
		return "unconfirmed"
	default:
		return "unknown"
	}
}

// ImageKnown reports whether the session is known to hold an image.
func (s State) ImageKnown() bool {
	return s == HasResult || s == Classified || s == Unconfirmed
}

const (
	NoticeUploadSucceeded = "Image successfully uploaded and classified."
	NoticeUploadFailed    = "Failed to upload image. Please try again."
	NoticeUnconfirmed     = "Image uploaded, but the result could not be loaded. Reload the session to see it."
)

// JPEG is the only accepted upload type.
const JPEG = "image/jpeg"

var ErrInvalidTransition = errors.New("operation not allowed in current state")

// Events.
type (
	Event interface{ event() }

	Load             struct{}
	DetailLoaded     struct{ Detail *models.SessionDetail }
	DetailLoadFailed struct{ Err error }

	Submit           struct{ File models.ImageFile }
	IdentityResolved struct {
		File models.ImageFile
		UID  string
	}
	HostUploaded struct {
		Ref models.ImageRef
		UID string
	}
	HostFailed   struct{ Err error }
	Attached     struct{ Ref models.ImageRef }
	AttachFailed struct {
		Ref models.ImageRef
		Err error
	}
	Refreshed     struct{ Detail *models.SessionDetail }
	RefreshFailed struct{ Err error }

	Retry  struct{}
	Reload struct{}
)

func (Load) event()             {}
func (DetailLoaded) event()     {}
func (DetailLoadFailed) event() {}
func (Submit) event()           {}
func (IdentityResolved) event() {}
func (HostUploaded) event()     {}
func (HostFailed) event()       {}
func (Attached) event()         {}
func (AttachFailed) event()     {}
func (Refreshed) event()        {}
func (RefreshFailed) event()    {}
func (Retry) event()            {}
func (Reload) event()           {}

// Effects.
type (
	Effect interface{ effect() }

	// FetchDetail reads the session from the backend. Refresh marks the
	// read-after-write of an upload.
	FetchDetail struct{ Refresh bool }
	// ResolveIdentity looks up the uid for an upload that passed its guards.
	ResolveIdentity struct{ File models.ImageFile }
	UploadToHost    struct {
		File models.ImageFile
		UID  string
	}
	AttachImage struct {
		Ref models.ImageRef
		UID string
	}
	StoreDetail struct{ Detail *models.SessionDetail }
	StoreImage  struct{ Ref models.ImageRef }
	// Fail ends the current operation with Err.
	Fail      struct{ Err error }
	Notify    struct{ Message string }
	LogOrphan struct {
		Ref models.ImageRef
		Err error
	}
)

func (FetchDetail) effect()     {}
func (ResolveIdentity) effect() {}
func (UploadToHost) effect()    {}
func (AttachImage) effect()     {}
func (StoreDetail) effect()     {}
func (StoreImage) effect()      {}
func (Fail) effect()            {}
func (Notify) effect()          {}
func (LogOrphan) effect()       {}

// Transition is the whole workflow: given the current state and an event
// it returns the next state and the effects to run, in order. It performs
// no I/O.
func Transition(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case Load:
		switch s {
		case Loading:
			return Loading, []Effect{FetchDetail{}}
		case Uploading:
			return s, []Effect{Fail{common.ErrUploadInProgress}}
		default:
			return s, []Effect{Fail{ErrInvalidTransition}}
		}

	case DetailLoaded:
		if s != Loading {
			return s, nil
		}
		if e.Detail.HasImage() {
			return HasResult, []Effect{StoreDetail{e.Detail}}
		}
		return NoImage, []Effect{StoreDetail{e.Detail}}

	case DetailLoadFailed:
		if s != Loading {
			return s, nil
		}
		return LoadFailed, []Effect{Fail{e.Err}}

	case Submit:
		return submit(s, e)

	case IdentityResolved:
		if s != Uploading {
			return s, nil
		}
		if e.UID == "" {
			return NoImage, []Effect{Fail{common.ErrMissingIdentity}}
		}
		return Uploading, []Effect{UploadToHost{File: e.File, UID: e.UID}}

	case HostUploaded:
		if s != Uploading {
			return s, nil
		}
		if !e.Ref.Complete() {
			return NoImage, []Effect{Fail{common.ErrIncompleteUploadResponse}, Notify{NoticeUploadFailed}}
		}
		return Uploading, []Effect{AttachImage{Ref: e.Ref, UID: e.UID}}

	case HostFailed:
		if s != Uploading {
			return s, nil
		}
		return UploadFailed, []Effect{Fail{e.Err}, Notify{NoticeUploadFailed}}

	case Attached:
		if s != Uploading {
			return s, nil
		}
		return Uploading, []Effect{StoreImage{e.Ref}, FetchDetail{Refresh: true}}

	case AttachFailed:
		if s != Uploading {
			return s, nil
		}
		return UploadFailed, []Effect{LogOrphan{Ref: e.Ref, Err: e.Err}, Fail{e.Err}, Notify{NoticeUploadFailed}}

	case Refreshed:
		if s != Uploading {
			return s, nil
		}
		return Classified, []Effect{StoreDetail{e.Detail}, Notify{NoticeUploadSucceeded}}

	case RefreshFailed:
		if s != Uploading {
			return s, nil
		}
		return Unconfirmed, []Effect{Notify{NoticeUnconfirmed}}

	case Retry:
		if s != UploadFailed {
			return s, []Effect{Fail{ErrInvalidTransition}}
		}
		return NoImage, nil

	case Reload:
		if s != LoadFailed && s != Unconfirmed {
			return s, []Effect{Fail{ErrInvalidTransition}}
		}
		return Loading, []Effect{FetchDetail{}}
	}

	return s, nil
}

// submit applies the upload guards in order; none of them touches the
// network or the identity store. Passing them claims the Uploading state
// before the uid is looked up.
func submit(s State, e Submit) (State, []Effect) {
	switch {
	case s == Uploading:
		return s, []Effect{Fail{common.ErrUploadInProgress}}
	case s.ImageKnown():
		return s, []Effect{Fail{common.ErrImageAlreadyAttached}}
	case s == Loading || s == LoadFailed:
		return s, []Effect{Fail{common.ErrNotReady}}
	}

	// UploadFailed falls back to NoImage implicitly.
	if e.File.ContentType != JPEG {
		if s == UploadFailed {
			return NoImage, []Effect{Fail{common.ErrInvalidFileType}}
		}
		return s, []Effect{Fail{common.ErrInvalidFileType}}
	}

	return Uploading, []Effect{ResolveIdentity{File: e.File}}
}
