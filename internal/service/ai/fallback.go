package ai

import (
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/havenlabs/haven/backend/internal/model/wellness"
)

// rule pairs a category pattern with its canned reply. Rules are evaluated
// in order; the first match wins.
type rule struct {
	pattern *regexp.Regexp
	reply   string
}

var fallbackRules = []rule{
	{
		pattern: regexp.MustCompile(`^(hi|hello|hey|greetings)`),
		reply:   "Hello! I'm here to listen. How are you feeling today?",
	},
	{
		pattern: regexp.MustCompile(`(good|great|fine|okay|alright|well)`),
		reply:   "I'm glad to hear that! 😊 What's been going well for you lately?",
	},
	{
		pattern: regexp.MustCompile(`(bad|sad|terrible|awful|horrible|worst|struggling|difficult|hard|tough)`),
		reply:   "I'm sorry you're going through this. It takes courage to share how you're feeling. Can you tell me more about what's been difficult?",
	},
	{
		pattern: regexp.MustCompile(`(anxious|anxiety|stressed|stress|worried|worry|nervous|panic)`),
		reply:   "Anxiety and stress can be really overwhelming. You're not alone in feeling this way. What situations or thoughts tend to trigger these feelings for you?",
	},
	{
		pattern: regexp.MustCompile(`(depressed|depression|down|hopeless|empty|numb|worthless)`),
		reply:   "I hear you, and I want you to know that your feelings are valid. Depression can make everything feel heavy. Have you been able to talk to anyone about this?",
	},
	{
		pattern: regexp.MustCompile(`(sleep|insomnia|tired|exhausted|can't rest|awake all night)`),
		reply:   "Sleep troubles can wear you down quickly. How have your nights been lately? Sometimes talking through what keeps you up can help.",
	},
	{
		pattern: regexp.MustCompile(`(need help|want help|therapist|counselor|counseling|professional)`),
		reply:   "Reaching out for help is a strong and positive step. Would you like to talk about what kind of support feels right for you?",
	},
	{
		pattern: regexp.MustCompile(`(thank|appreciate|grateful)`),
		reply:   "You're very welcome. I'm glad I could be here for you. Is there anything else on your mind?",
	},
	{
		pattern: regexp.MustCompile(`(who are you|what are you|are you real|are you human|how do you work)`),
		reply:   "I'm a supportive companion here to listen whenever you need to talk. I'm not a person or a counselor, but everything you share stays between us. What would you like to talk about?",
	},
}

var empatheticPool = []string{
	"I understand. Can you tell me more about that?",
	"That sounds really challenging. How long have you been feeling this way?",
	"Thank you for sharing that with me. It's not easy to open up. What do you think might help you feel better?",
	"I'm listening. Your feelings matter. What's been on your mind?",
	"That must be really difficult. You're showing strength by talking about it. What would feel supportive right now?",
	"I hear you. Sometimes just expressing what we're feeling can help. Is there anything specific that's been weighing on you?",
	"Thank you for trusting me with this. You don't have to go through this alone. What would be most helpful for you right now?",
}

// Responder is the deterministic rule-based reply source used whenever the
// generation provider is unavailable or unconfigured.
type Responder struct {
	rng *rand.Rand
}

// NewResponder creates a fallback responder. A nil rng gets a time-seeded
// one; tests inject a fixed seed to pin down pool selection.
func NewResponder(rng *rand.Rand) *Responder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Responder{rng: rng}
}

// Reply matches the lower-cased message against the ordered category rules
// and returns the first hit, or a pseudo-random empathetic prompt when no
// category applies.
func (r *Responder) Reply(message string) string {
	lower := strings.ToLower(message)

	for _, rule := range fallbackRules {
		if rule.pattern.MatchString(lower) {
			return rule.reply
		}
	}

	return empatheticPool[r.rng.Intn(len(empatheticPool))]
}

// MoodReply returns the canned acknowledgement for a mood check-in, used
// when the generation provider cannot supply a contextual one.
func (r *Responder) MoodReply(mood string) string {
	switch mood {
	case wellness.MoodGreat:
		return "That's wonderful to hear! 😊 What's been going well for you? I'd love to hear about the positive things in your life."
	case wellness.MoodGood:
		return "I'm glad you're doing well! 🙂 What's contributing to your good mood today?"
	case wellness.MoodOkay:
		return "Thanks for sharing. Sometimes 'okay' is exactly where we need to be. Is there anything specific on your mind, or are you just checking in?"
	case wellness.MoodNotGreat:
		return "I'm sorry you're not feeling great. That's completely valid. Would you like to talk about what's been difficult? I'm here to listen."
	case wellness.MoodStruggling:
		return "Thank you for being honest about how you're feeling. It takes courage to acknowledge when we're struggling. Can you tell me more about what's been challenging?"
	default:
		return "Thanks for checking in. How are things feeling for you right now?"
	}
}
