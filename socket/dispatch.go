package socket

import (
	"time"

	"Forge/pkg/response"
	"Forge/schema"
	"Forge/types"
	"Forge/view"
)

var (
	errMalformed    = response.Validation("malformed frame")
	errRefRequired  = response.Validation("ref is required")
	errTooManyViews = response.Validation("too many mounted views")
	errNoView       = response.NotFound("nothing mounted at ref")
)

// dispatch 挂载与卸载在读协程内同步执行，保证与后续帧的顺序；写操作异步执行
func (s *Session) dispatch(in Inbound) {
	switch in.Event {
	case EventPing:
		s.push(Outbound{Event: EventPong, Ref: in.Ref})
		return
	}
	if in.Ref == "" {
		s.push(errorFrame("", errRefRequired))
		return
	}

	switch in.Event {
	case EventToggleMount:
		s.reply(in.Ref, s.mountToggle(in))
	case EventThreadMount:
		s.reply(in.Ref, s.mountThread(in))
	case EventFeedMount:
		s.reply(in.Ref, s.mountFeed(in))
	case EventUnmount:
		s.detach(in.Ref)
	case EventToggleFlip:
		s.tasks.Go(func() { s.reply(in.Ref, s.flip(in)) })
	case EventThreadSubmit:
		s.tasks.Go(func() { s.reply(in.Ref, s.submit(in)) })
	case EventThreadRemove:
		s.tasks.Go(func() { s.reply(in.Ref, s.remove(in)) })
	default:
		s.push(errorFrame(in.Ref, response.Validation("unknown event "+in.Event)))
	}
}

func (s *Session) reply(ref string, err error) {
	if err != nil {
		s.push(errorFrame(ref, err))
	}
}

func parentKind(in Inbound, fallback schema.ParentKind) (schema.ParentKind, error) {
	raw := in.Payload.Get("parent_kind").String()
	if raw == "" {
		return fallback, nil
	}
	kind, err := schema.ParseParentKind(raw)
	if err != nil {
		return 0, response.Validation(err.Error())
	}
	return kind, nil
}

func (s *Session) mountToggle(in Inbound) error {
	edge, err := schema.ParseEdgeKind(in.Payload.Get("kind").String())
	if err != nil {
		return response.Validation(err.Error())
	}
	kind, err := parentKind(in, schema.KindPost)
	if err != nil {
		return err
	}

	tg, err := view.NewToggle(s.hub.Gateway, view.ToggleSpec{
		Edge:      edge,
		Kind:      kind,
		SubjectID: in.Payload.Get("subject_id").String(),
		ActorID:   s.userID,
	}, s.hub.viewOptions(s)...)
	if err != nil {
		return err
	}
	ref := in.Ref
	tg.OnChange(func(st view.EdgeState) {
		s.push(Outbound{Event: EventToggleState, Ref: ref, Payload: st})
	})
	return s.attach(ref, tg)
}

func (s *Session) mountThread(in Inbound) error {
	kind, err := parentKind(in, schema.KindPost)
	if err != nil {
		return err
	}
	th, err := view.NewThread(s.hub.Gateway, kind, in.Payload.Get("parent_id").String(), s.hub.viewOptions(s)...)
	if err != nil {
		return err
	}
	ref := in.Ref
	th.OnChange(func(items []view.Comment) {
		s.push(Outbound{Event: EventThreadItems, Ref: ref, Payload: ItemsPayload[view.Comment]{Items: items}})
	})
	th.OnCount(func(n int) {
		s.push(Outbound{Event: EventThreadCount, Ref: ref, Payload: CountPayload{Count: n}})
	})
	return s.attach(ref, th)
}

func (s *Session) mountFeed(in Inbound) error {
	kind, err := parentKind(in, schema.KindPost)
	if err != nil {
		return err
	}
	feed, err := view.NewFeed(s.hub.Gateway, kind,
		in.Payload.Get("owner_id").String(),
		int(in.Payload.Get("limit").Int()),
		s.hub.viewOptions(s)...)
	if err != nil {
		return err
	}
	ref := in.Ref
	feed.OnChange(func(items []view.FeedItem) {
		s.push(Outbound{Event: EventFeedItems, Ref: ref, Payload: ItemsPayload[view.FeedItem]{Items: items}})
	})
	return s.attach(ref, feed)
}

func (s *Session) flip(in Inbound) error {
	v, _ := s.views.Get(in.Ref)
	tg, ok := v.(*view.Toggle)
	if !ok {
		return errNoView
	}

	st, err := tg.Toggle(s.ctx)
	if err != nil {
		return err
	}
	spec := tg.Spec()
	a := types.Activity{
		Type:      types.ActivityEdge,
		ActorID:   s.userID,
		SubjectID: spec.SubjectID,
		Edge:      spec.Edge.String(),
		Active:    st.Active(),
		At:        time.Now().UTC(),
	}
	if spec.Edge != schema.EdgeFollow {
		a.Kind = spec.Kind.String()
	}
	s.hub.publish(s.ctx, a)
	return nil
}

func (s *Session) thread(ref string) (*view.Thread, error) {
	v, _ := s.views.Get(ref)
	th, ok := v.(*view.Thread)
	if !ok {
		return nil, errNoView
	}
	return th, nil
}

func (s *Session) submit(in Inbound) error {
	th, err := s.thread(in.Ref)
	if err != nil {
		return err
	}
	var c view.Comment
	if body := in.Payload.Get("body"); body.Exists() {
		c, err = th.SubmitBody(s.ctx, s.userID, body.String())
	} else {
		c, err = th.Submit(s.ctx, s.userID)
	}
	if err != nil {
		return err
	}
	s.hub.publish(s.ctx, types.Activity{
		Type:      types.ActivityComment,
		ActorID:   s.userID,
		SubjectID: th.ParentID(),
		Kind:      th.Kind().String(),
		Active:    true,
		RefID:     c.ID,
		At:        c.CreatedAt,
	})
	return nil
}

func (s *Session) remove(in Inbound) error {
	th, err := s.thread(in.Ref)
	if err != nil {
		return err
	}
	_, err = th.Remove(s.ctx, in.Payload.Get("comment_id").String(), s.userID)
	return err
}
