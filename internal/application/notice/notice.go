// Package notice carries the transient messages shown to the admin after an
// action completes.
package notice

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func Success(title, message string) Notice {
	return Notice{Level: LevelSuccess, Title: title, Message: message}
}

func Failure(title, message string) Notice {
	return Notice{Level: LevelError, Title: title, Message: message}
}

func (n Notice) IsZero() bool {
	return n.Title == "" && n.Message == ""
}
