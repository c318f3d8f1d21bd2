package enum

type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusPartial RunStatus = "partial"
)

func (t RunStatus) String() string {
	return string(t)
}
