package prompt

type CommentaryPromptData struct {
	ChannelName    string
	VideoTitle     string
	SamplePosition string
	SampleText     string
}
