package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/oalvarez/petfolio/internal/chat/index"
	"github.com/oalvarez/petfolio/internal/chat/memory"
	"github.com/oalvarez/petfolio/provider"
)

// veterinaryPersona is the fixed system instruction. Not user-configurable.
const veterinaryPersona = `You are an expert veterinary assistant helping a pet owner understand their pet's health records and general care.

Rules:
1. When the owner asks about something mentioned earlier in the conversation, refer to that earlier content explicitly.
2. When document excerpts are provided, ground your answer in them and say so; if they do not cover the question, say that too.
3. Always recommend an in-person veterinary visit for anything that would require physically examining the animal.
4. Never prescribe medication or dosages. Only a licensed veterinarian who has examined the animal may do that.
5. Be warm, clear and concise.`

// Searcher is the retrieval handle the composer consumes. A nil or empty
// handle selects general-conversation mode.
type Searcher interface {
	Search(ctx context.Context, query string) ([]index.Fragment, error)
	Empty() bool
}

// LLM is the language-model half of the provider contract.
type LLM interface {
	ChatCompletion(ctx context.Context, messages []provider.Message) (string, error)
}

// Answer is a composed reply plus the fragments that grounded it.
type Answer struct {
	Text      string
	Fragments []index.Fragment
}

// Composer turns a question, optional retrieval handle and prior turns into
// one model call. It is pure with respect to session memory: recording the
// exchange is the caller's job, so a failed call leaves no partial turn.
type Composer struct {
	llm     LLM
	timeout time.Duration
	logger  *log.Logger
}

func NewComposer(llm LLM, timeout time.Duration, logger *log.Logger) *Composer {
	if logger == nil {
		logger = log.New(log.Writer(), "[CHAT] ", log.LstdFlags)
	}
	return &Composer{llm: llm, timeout: timeout, logger: logger}
}

// Answer composes and sends the prompt. Retrieval-augmented mode is chosen
// per call, iff the handle is present and non-empty.
func (c *Composer) Answer(ctx context.Context, question string, idx Searcher, history []memory.Turn) (Answer, error) {
	ragActive := idx != nil && !idx.Empty()

	msgs := []provider.Message{{Role: "system", Content: veterinaryPersona}}
	var frags []index.Fragment
	if ragActive {
		var err error
		frags, err = idx.Search(ctx, question)
		if err != nil {
			return Answer{}, err
		}
		if len(frags) > 0 {
			msgs = append(msgs, provider.Message{Role: "system", Content: groundingBlock(frags)})
		}
	}
	for _, t := range history {
		msgs = append(msgs, provider.Message{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, provider.Message{Role: memory.RoleUser, Content: question})

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	text, err := c.llm.ChatCompletion(cctx, msgs)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Text: text, Fragments: frags}, nil
}

func groundingBlock(frags []index.Fragment) string {
	var b strings.Builder
	b.WriteString("Excerpts from this pet's veterinary documents:\n")
	for i, f := range frags {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(f.Content)
	}
	return b.String()
}
