package domain

// ContactMessage is a visitor submission from the contact form. It is
// written once and never read back.
type ContactMessage struct {
	ID        string `dynamodbav:"id" json:"id"`
	Timestamp string `dynamodbav:"timestamp" json:"timestamp"`
	IP        string `dynamodbav:"ip,omitempty" json:"ip,omitempty"`
	Name      string `dynamodbav:"name" json:"name"`
	Email     string `dynamodbav:"email" json:"email"`
	Message   string `dynamodbav:"message" json:"message"`
}
