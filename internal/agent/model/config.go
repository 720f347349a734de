package model

// ================ Config ================
type ConversationConfig struct {
	TTL string `envconfig:"CONVERSATION_TTL" default:"30m"`
	Tools struct {
		MaxRounds int `envconfig:"CONVERSATION_TOOL_MAX_ROUNDS" default:"8"`
	}
}

type ChatModelConfig struct {
	Model       string  `envconfig:"CHAT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"CHAT_TEMPERATURE" default:"0.4"`
}

type MapsConfig struct {
	APIKey string `envconfig:"GOOGLE_MAPS_API_KEY" required:"true"`
}

type SESConfig struct {
	Region     string `envconfig:"AWS_DEFAULT_REGION" default:"us-east-1"`
	Sender     string `envconfig:"SES_SENDER_EMAIL" default:"office@drsmith.example.com"`
	SenderName string `envconfig:"SES_SENDER_NAME" default:"Dr. Smith's Medical Office"`
	Recipient  string `envconfig:"SES_RECIPIENT_EMAIL" default:"scheduling@drsmith.example.com"`
}

type TwilioConfig struct {
	AccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
}
