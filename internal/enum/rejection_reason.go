package enum

type RejectionReason string

const (
	RejectionNone           RejectionReason = ""
	RejectionNoExtension    RejectionReason = "no_extension"
	RejectionTypeNotAllowed RejectionReason = "type_not_allowed"
	RejectionSizeOverLimit  RejectionReason = "size_over_limit"
)

func (t RejectionReason) String() string {
	return string(t)
}
