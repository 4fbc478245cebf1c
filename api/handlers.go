package api

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/repomem/pkg/archive"
	"github.com/papercomputeco/repomem/pkg/ingest"
)

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleSummarizeRepository ingests a repository branch and responds with
// its "{APIURI}-{Branch}" identifier.
func (s *Server) handleSummarizeRepository(c *fiber.Ctx) error {
	summarize := s.config.Summarize
	if raw := param(c, "summarize"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return s.fail(c, fmt.Errorf("%w: summarize must be a boolean", archive.ErrInvalidInput))
		}
		summarize = v
	}

	result, err := s.ingester.Summarize(c.UserContext(), ingest.Request{
		URL:        param(c, "URL"),
		Branch:     param(c, "repositoryBranch"),
		Pattern:    param(c, "searchPattern"),
		PAT:        param(c, "patToken"),
		Collection: param(c, "collection"),
		Summarize:  summarize,
	})
	if err != nil {
		return s.fail(c, err)
	}

	return text(c, result.Repository)
}

// handleGitHubMemoryQuery answers input from the records of collection.
func (s *Server) handleGitHubMemoryQuery(c *fiber.Ctx) error {
	input := param(c, "input")
	if input == "" {
		return s.fail(c, fmt.Errorf("%w: input is required", archive.ErrInvalidInput))
	}

	answer, err := s.answerer.Ask(c.UserContext(), input, param(c, "collection"))
	if err != nil {
		return s.fail(c, err)
	}

	return text(c, answer)
}

// param reads a query parameter, falling back to a form field.
func param(c *fiber.Ctx, name string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return c.FormValue(name)
}

func text(c *fiber.Ctx, body string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(body)
}
