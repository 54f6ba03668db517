package whatsapp

// MessageSender can send a text message to a recipient phone number.
type MessageSender interface {
	SendMessage(recipientPhone, text string) error
}

// Messenger implements chat.Sender on top of the WhatsApp Graph API bot.
type Messenger struct {
	sender MessageSender
}

func NewMessenger(sender MessageSender) *Messenger {
	return &Messenger{sender: sender}
}

func (m *Messenger) Send(userID, text string) error {
	return m.sender.SendMessage(userID, text)
}
