package telegram

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go

// Client posts finished reels to the configured channel.
type Client interface {
	// SendVideo uploads the video file at path with a caption.
	SendVideo(path, caption string) error
	// SendPhoto uploads a still, used for the cover of a frame sequence.
	SendPhoto(path, caption string) error
	// SendMessageToChannel posts escaped MarkdownV2 text.
	SendMessageToChannel(text string) error
}
