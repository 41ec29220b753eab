package memory_test

import (
	"os"
	"testing"

	"github.com/nucleusmind/contextengine/config"
	"github.com/nucleusmind/contextengine/internal/mytesting"
	"github.com/nucleusmind/contextengine/memory"
	"github.com/stretchr/testify/suite"
)

type OpenAIEmbedderTestSuite struct {
	mytesting.Suite
}

func (s *OpenAIEmbedderTestSuite) TestEmbed() {
	if testing.Short() {
		s.T().Skip("Skipping test in short mode")
	}
	if os.Getenv("OPENAI_API_KEY") == "" {
		s.T().Skip("Skipping test because OPENAI_API_KEY is not set")
	}

	conf := config.NewOpenAIConfig()
	conf.APIKey = os.Getenv("OPENAI_API_KEY")
	embedder := memory.NewOpenAIEmbedder(conf)

	embeddings, err := embedder.Embed(s.Context, "the customer prefers weekly summaries", "billing is handled quarterly")
	s.Require().NoError(err)
	s.Require().Len(embeddings, 2)
	s.NotEmpty(embeddings[0])
	s.NotEqual(embeddings[0], embeddings[1])

	// Empty input is a no-op, not an API call
	embeddings, err = embedder.Embed(s.Context)
	s.Require().NoError(err)
	s.Empty(embeddings)
}

func TestOpenAIEmbedder(t *testing.T) {
	suite.Run(t, new(OpenAIEmbedderTestSuite))
}
