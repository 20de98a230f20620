package proto

import "encoding/json"

// Fixed operation tags understood by the dispatcher.
const (
	OpLogin           = "Login"
	OpLogout          = "Logout"
	OpSearchHotel     = "SearchHotel"
	OpSearchAllHotels = "SearchAllHotels"
	OpInsertReview    = "InsertReview"
	OpShowMyBadges    = "ShowMyBadges"
	OpSendKey         = "SendKey"
)

// Status codes form a fixed small vocabulary.
const (
	StatusOK           = 200
	StatusBadRequest   = 400
	StatusUnauthorized = 401
	StatusDuplicate    = 403
	StatusNotFound     = 404
	StatusInternal     = 500
)

// Request is the envelope for messages coming from a client: an operation tag
// plus a flat parameter object decoded per operation.
type Request struct {
	Operation string          `json:"operation"`
	Param     json.RawMessage `json:"param"`
}

// Response is the envelope sent back: a status code plus a result/body pair.
type Response struct {
	StatusCode int     `json:"status_code"`
	Message    Message `json:"message"`
}

// Message carries an operation-specific result value and a human-readable body.
type Message struct {
	Result any    `json:"result,omitempty"`
	Body   string `json:"body"`
}

// NewResponse is a small convenience constructor.
func NewResponse(status int, result any, body string) *Response {
	return &Response{StatusCode: status, Message: Message{Result: result, Body: body}}
}

// LoginParams carries the Login operation's parameters. Password is the
// AES-encrypted wire password; SessionID names the key negotiated by SendKey.
type LoginParams struct {
	Username  string `json:"username"`
	Password  []byte `json:"password"`
	SessionID string `json:"session_id"`
}

// LogoutParams carries the Logout operation's parameters.
type LogoutParams struct {
	Username string `json:"username"`
}

// SearchHotelParams identifies one hotel by name and city.
type SearchHotelParams struct {
	Name string `json:"hotel_name"`
	City string `json:"hotel_city"`
}

// SearchAllHotelsParams identifies a city.
type SearchAllHotelsParams struct {
	City string `json:"hotel_city"`
}

// InsertReviewParams carries a new review's scores.
type InsertReviewParams struct {
	Name         string    `json:"hotel_name"`
	City         string    `json:"hotel_city"`
	GlobalScore  float64   `json:"global_score"`
	SingleScores []float64 `json:"single_scores"`
}

// SendKeyParams carries the client's Diffie-Hellman public value as a
// decimal string.
type SendKeyParams struct {
	PublicKey string `json:"public_key"`
}

// KeyExchangeResult is the SendKey success payload: the server's public value
// and the session identifier now bound to the negotiated key.
type KeyExchangeResult struct {
	ServerKey string `json:"server_key"`
	SessionID string `json:"session_id"`
}
