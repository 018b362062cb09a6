package sidecar

// Kind identifies which descriptor shape a document matched.
type Kind string

const (
	KindMediaProfile    Kind = "media_profile"
	KindCueUpInfo       Kind = "cue_up_info"
	KindDiscMeta        Kind = "disc_meta"
	KindNonRealTimeMeta Kind = "non_real_time_meta"
	KindClipMetadata    Kind = "clip_metadata"
	KindCameraMeta      Kind = "camera_meta"
	KindUnknown         Kind = "unknown"
	KindUnparsable      Kind = "unparsable"
	KindUnreadable      Kind = "unreadable"
)

// Known reports whether the kind is one of the recognized schemas.
func (k Kind) Known() bool {
	switch k {
	case KindMediaProfile, KindCueUpInfo, KindDiscMeta, KindNonRealTimeMeta, KindClipMetadata, KindCameraMeta:
		return true
	default:
		return false
	}
}
