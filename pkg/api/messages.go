package api

// MessageResponse подтверждает прием исходящей мутации сервером
type MessageResponse struct {
	ID        string `json:"id"`        // ID принятого сообщения
	Duplicate bool   `json:"duplicate"` // true если сообщение уже было применено ранее
}
