package model

// ChatMessage is an inbound chat line addressed to the bot.
type ChatMessage struct {
	Nick    string // sender's nick
	Login   string // sender's ident; the credential store key
	ReplyTo string // channel the message arrived in, or the sender's nick for PMs
	Text    string
}
