package dto

// Respuesta is the success envelope shared by every endpoint.
type Respuesta struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(data interface{}) Respuesta { return Respuesta{Success: true, Data: data} }

func OKMsg(msg string, data interface{}) Respuesta {
	return Respuesta{Success: true, Message: msg, Data: data}
}

// TotalPages returns ceil(total/limit), never less than 1.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		return 1
	}
	return pages
}
