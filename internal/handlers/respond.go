package handlers

import (
	"fmt"
	"strings"

	"katalog/internal/codec"
	"katalog/internal/models"

	"github.com/cespare/xxhash/v2"
	"github.com/gofiber/fiber/v2"
)

// MIMETextXML is accepted as a synonym for application/xml.
const MIMETextXML = "text/xml"

// wantsXML reports whether the Accept header prefers the markup format.
// Anything else, including a missing header, gets JSON.
func wantsXML(c *fiber.Ctx) bool {
	switch c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMEApplicationXML, MIMETextXML) {
	case fiber.MIMEApplicationXML, MIMETextXML:
		return true
	}
	return false
}

// respond encodes env in the negotiated format. Successful reads carry an
// ETag derived from the body and honour If-None-Match.
func respond(c *fiber.Ctx, status int, env models.Envelope) error {
	var (
		body        []byte
		contentType string
		err         error
	)
	if wantsXML(c) {
		body, err = codec.EncodeXML(env)
		contentType = fiber.MIMEApplicationXMLCharsetUTF8
	} else {
		body, err = c.App().Config().JSONEncoder(env)
		contentType = fiber.MIMEApplicationJSONCharsetUTF8
	}
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	c.Vary(fiber.HeaderAccept)
	c.Set(fiber.HeaderContentType, contentType)

	if c.Method() == fiber.MethodGet && status == fiber.StatusOK {
		etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
		c.Set(fiber.HeaderETag, etag)
		if etagMatches(c.Get(fiber.HeaderIfNoneMatch), etag) {
			return c.SendStatus(fiber.StatusNotModified)
		}
	}

	return c.Status(status).Send(body)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
