// Package chat answers the portal's help widget with canned replies.
package chat

import "strings"

const fallback = "I'm the clinic assistant. Ask me about appointments, prescriptions, your risk score or healthy habits."

var rules = []struct {
	keywords []string
	reply    string
}{
	{[]string{"appointment", "book", "schedule"}, "You can book a visit from the Appointments page. Pick a date, a time and tell us the reason."},
	{[]string{"prescription", "medication", "medicine", "dose"}, "Your prescriptions are listed on the Prescriptions page. Always follow the dosage your doctor gave you."},
	{[]string{"risk", "score", "result", "heart"}, "Your latest risk score is on your dashboard. A score above 50 means you should talk to your doctor."},
	{[]string{"diet", "exercise", "healthy", "lifestyle"}, "Regular exercise, a low-salt diet and not smoking all help keep your heart healthy."},
	{[]string{"emergency", "chest pain"}, "If you have chest pain or think it is an emergency, call emergency services now."},
	{[]string{"hello", "hi", "hey"}, "Hello! How can I help you today?"},
}

// Reply returns the first matching canned answer. Blank input gets no reply.
func Reply(message string) string {
	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return ""
	}
	words := strings.FieldsFunc(msg, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(msg, kw) {
					return rule.reply
				}
				continue
			}
			for _, w := range words {
				if w == kw || strings.TrimSuffix(w, "s") == kw {
					return rule.reply
				}
			}
		}
	}
	return fallback
}
