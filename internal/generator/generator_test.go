package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/animchat/internal/config"
	"github.com/ivlev/animchat/internal/director"
)

func TestLocalGenerator_ProducesParsablePlan(t *testing.T) {
	text, err := LocalGenerator{}.Generate(context.Background(), SystemPrompt, "cat dancing under moonlight")
	require.NoError(t, err)
	assert.Contains(t, text, "**cat dancing under moonlight**")

	plan, err := director.Parse(text)
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, "zoom-in", plan[0].CameraMotion)
	assert.Equal(t, "cat dancing under moonlight", plan[1].Caption)
	assert.Equal(t, 7.0, plan.TotalDuration())
}

func TestLocalGenerator_FramedPromptWithBrackets(t *testing.T) {
	idea := "make the [cat] dance"
	text, err := LocalGenerator{}.Generate(context.Background(), SystemPrompt, UserPrompt(idea))
	require.NoError(t, err)
	assert.Contains(t, text, "**make the (cat) dance**")
	assert.NotContains(t, text, "Animation idea:")

	plan, err := director.Parse(text)
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, idea, plan[1].Caption)
	assert.Equal(t, "Opening: "+idea, plan[0].Caption)
}

func TestIdeaFromPrompt(t *testing.T) {
	assert.Equal(t, "a [b] c", IdeaFromPrompt(UserPrompt("a [b] c")))
	assert.Equal(t, "plain text", IdeaFromPrompt("  plain text "))
	assert.Equal(t, "", IdeaFromPrompt(UserPrompt("")))
}

func TestLocalGenerator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LocalGenerator{}.Generate(ctx, "", "x")
	assert.ErrorIs(t, err, ErrGenerationFailure)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFallbackPlanText(t *testing.T) {
	plan, err := director.Parse(FallbackPlanText)
	require.NoError(t, err)
	require.Len(t, plan, 3)

	var motions []string
	for _, s := range plan {
		motions = append(motions, s.CameraMotion)
	}
	assert.Equal(t, []string{"zoom-in", "pan-right", "zoom-out"}, motions)
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("quota exceeded")
	var err error = &GenerationError{Backend: "gemini/x", Err: cause}

	assert.ErrorIs(t, err, ErrGenerationFailure)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "quota exceeded")

	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "gemini/x", ge.Backend)
}

type blockingGenerator struct{}

func (blockingGenerator) Name() string { return "blocking" }

func (blockingGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	g := WithTimeout(blockingGenerator{}, 10*time.Millisecond)
	_, err := g.Generate(context.Background(), "", "hello")
	assert.ErrorIs(t, err, ErrGenerationFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, blockingGenerator{}, WithTimeout(blockingGenerator{}, 0))
}

func TestNew_NoKeyUsesLocal(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = ""
	g, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "local", g.Name())
}
