package model

// Clone helpers give the store copy-in/copy-out semantics so callers can
// never mutate a stored record through an aliased slice or map.

func (t *Topic) Clone() *Topic {
	if t == nil {
		return nil
	}
	out := *t
	out.Customizations.FocusAreas = append([]string(nil), t.Customizations.FocusAreas...)
	return &out
}

func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}

func (w *Website) Clone() *Website {
	if w == nil {
		return nil
	}
	out := *w
	return &out
}

func (m Message) clone() Message {
	out := m
	if m.Metadata != nil {
		out.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		out.Messages[i] = m.clone()
	}
	return &out
}

func (q *Quiz) Clone() *Quiz {
	if q == nil {
		return nil
	}
	out := *q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		out.Questions[i] = question
		out.Questions[i].Options = append([]string(nil), question.Options...)
	}
	out.Attempts = make([]Attempt, len(q.Attempts))
	for i, attempt := range q.Attempts {
		out.Attempts[i] = attempt
		out.Attempts[i].Answers = append([]Answer(nil), attempt.Answers...)
	}
	return &out
}
