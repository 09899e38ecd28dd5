package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Flash categories used by the templates.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashDanger  = "danger"
)

// Message is one flash notice.
type Message struct {
	Category string `json:"c"`
	Text     string `json:"m"`
}

const flashContextKey = "session.flash"

// Flash queues notices in a cookie until the next page render consumes them.
type Flash struct {
	cookieName string
	secure     bool
}

func NewFlash(cookieName string, secure bool) *Flash {
	return &Flash{cookieName: cookieName, secure: secure}
}

// Add appends a notice. Notices added earlier in the same request are kept.
func (f *Flash) Add(c *gin.Context, category, text string) {
	msgs := append(f.pending(c), Message{Category: category, Text: text})
	c.Set(flashContextKey, msgs)

	data, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	f.write(c, base64.RawURLEncoding.EncodeToString(data), 0)
}

// Consume returns the queued notices and clears the cookie.
func (f *Flash) Consume(c *gin.Context) []Message {
	msgs := f.pending(c)
	c.Set(flashContextKey, []Message(nil))
	if len(msgs) > 0 {
		f.write(c, "", -1)
	}
	return msgs
}

func (f *Flash) pending(c *gin.Context) []Message {
	if v, ok := c.Get(flashContextKey); ok {
		msgs, _ := v.([]Message)
		return msgs
	}

	raw, err := c.Cookie(f.cookieName)
	if err != nil || raw == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil
	}
	return msgs
}

func (f *Flash) write(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     f.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   f.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
