package clinical

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/yungbote/clinicscribe-backend/internal/observability"
	apperr "github.com/yungbote/clinicscribe-backend/internal/pkg/errors"
	"github.com/yungbote/clinicscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

const (
	stageChatRelevance = "chat_relevance"
	stageChatAnswer    = "chat_answer"

	OutOfContextMessage = "I understand you have a question, but it's not directly related to your recent consultation summary. I'm forwarding your message to your doctor, and they will get back to you soon. Is there anything else I can help you with regarding your recent visit?"
	ApologyMessage      = "I apologize, but I'm having trouble processing your question right now. Please try again or contact your doctor directly."
)

// Summary is the SOAP context a patient question is checked against.
type Summary struct {
	Subjective string
	Objective  string
	Assessment string
	Plan       string
}

func SummaryFromRecord(r Record) Summary {
	return Summary{Subjective: r.Subjective, Objective: r.Objective, Assessment: r.Assessment, Plan: r.Plan}
}

// SummaryFromMap accepts either S/O/A/P or the full section names; the
// single-letter key wins when both are set.
func SummaryFromMap(m map[string]any) (Summary, error) {
	var raw struct {
		S          string `mapstructure:"S"`
		O          string `mapstructure:"O"`
		A          string `mapstructure:"A"`
		P          string `mapstructure:"P"`
		Subjective string `mapstructure:"Subjective"`
		Objective  string `mapstructure:"Objective"`
		Assessment string `mapstructure:"Assessment"`
		Plan       string `mapstructure:"Plan"`
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return Summary{}, err
	}
	if err := dec.Decode(m); err != nil {
		return Summary{}, fmt.Errorf("%w: soap_summary: %v", apperr.ErrInvalidArgument, err)
	}
	return Summary{
		Subjective: firstNonBlank(raw.S, raw.Subjective),
		Objective:  firstNonBlank(raw.O, raw.Objective),
		Assessment: firstNonBlank(raw.A, raw.Assessment),
		Plan:       firstNonBlank(raw.P, raw.Plan),
	}, nil
}

func (s Summary) Empty() bool {
	return firstNonBlank(s.Subjective, s.Objective, s.Assessment, s.Plan) == ""
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}

// Reply is the chat response for one patient question.
type Reply struct {
	Answer            string `json:"answer"`
	Relevant          bool   `json:"is_relevant"`
	ForwardedToDoctor bool   `json:"forwarded_to_doctor"`
}

// Chat answers patient questions from their SOAP summary, forwarding
// anything off-topic to the doctor.
type Chat struct {
	log     *logger.Logger
	gen     Generator
	metrics *observability.Metrics
}

func NewChat(log *logger.Logger, gen Generator, metrics *observability.Metrics) *Chat {
	return &Chat{log: log.With("service", "SOAPChat"), gen: gen, metrics: metrics}
}

func (c *Chat) Ask(ctx context.Context, question string, summary Summary) (Reply, error) {
	ctx = ctxutil.Default(ctx)
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, fmt.Errorf("%w: question is required", apperr.ErrInvalidArgument)
	}
	if summary.Empty() {
		return Reply{}, fmt.Errorf("%w: soap_summary is required", apperr.ErrInvalidArgument)
	}

	if !c.isRelevant(ctx, question, summary) {
		c.log.Info("Question out of context; forwarding to doctor", "session_id", ctxutil.SessionID(ctx))
		return Reply{Answer: OutOfContextMessage, ForwardedToDoctor: true}, nil
	}
	return Reply{Answer: c.answer(ctx, question, summary), Relevant: true}, nil
}

// isRelevant reads YES/NO from the oracle. Errors count as not relevant.
func (c *Chat) isRelevant(ctx context.Context, question string, s Summary) bool {
	ctx, span := observability.StartSpan(ctx, "clinical.chat.relevance")
	start := time.Now()
	raw, err := c.gen.GenerateText(ctx, relevanceSystemPrompt, questionUserPrompt(s, question))
	c.metrics.ObserveOracle(observability.OracleText, stageChatRelevance, time.Since(start), err)
	observability.EndSpan(span, err)
	if err != nil {
		c.log.Error("Relevance check failed", "session_id", ctxutil.SessionID(ctx), "error", err.Error())
		c.metrics.IncFallback(stageChatRelevance, "oracle_error")
		return false
	}
	verdict := strings.ToUpper(strings.Trim(strings.TrimSpace(raw), `"'`))
	return strings.HasPrefix(verdict, "YES")
}

func (c *Chat) answer(ctx context.Context, question string, s Summary) string {
	ctx, span := observability.StartSpan(ctx, "clinical.chat.answer")
	start := time.Now()
	raw, err := c.gen.GenerateText(ctx, answerSystemPrompt, questionUserPrompt(s, question))
	c.metrics.ObserveOracle(observability.OracleText, stageChatAnswer, time.Since(start), err)
	observability.EndSpan(span, err)
	if err != nil || strings.TrimSpace(raw) == "" {
		if err != nil {
			c.log.Error("Answer generation failed", "session_id", ctxutil.SessionID(ctx), "error", err.Error())
		}
		c.metrics.IncFallback(stageChatAnswer, "oracle_error")
		return ApologyMessage
	}
	return strings.TrimSpace(raw)
}
