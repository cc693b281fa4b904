package tasklist

// Kind classifies a notification.
type Kind int

const (
	Success Kind = iota
	Error
	Info
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows dismissible messages to the user.
type Notifier interface {
	Notify(kind Kind, title, message string)
}

type discard struct{}

func (discard) Notify(Kind, string, string) {}
