package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"regwizard/models"
	"regwizard/services/wizard"
	"regwizard/utils"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	liveReadLimit    = 16 << 10
	liveWriteTimeout = 5 * time.Second
)

// LiveHandler upgrades to a websocket that carries wizard events for one
// session. Frames are applied in arrival order; a submission runs in the
// background so a cancel frame can reach it.
func (hb *HandlerBundle) LiveHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid session id", err.Error())
		return
	}
	logger := getLogger(c).With(zap.String("sessionID", id.String()))

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		Subprotocols:   []string{SubprotocolMsgpack, SubprotocolJSON},
		OriginPatterns: hb.LiveOrigins,
	})
	if err != nil {
		logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(liveReadLimit)

	if hb.Metrics != nil {
		hb.Metrics.LiveConnections.Inc()
		defer hb.Metrics.LiveConnections.Dec()
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	s := &liveSession{
		hb:     hb,
		id:     id.String(),
		ctrl:   hb.Wizard.Session(ctx, id.String()),
		conn:   conn,
		codec:  codecFor(conn.Subprotocol()),
		logger: logger,
	}
	logger.Debug("Live session opened", zap.String("subprotocol", s.codec.Name()))
	s.run(ctx)
	cancel()
	s.wg.Wait()
	conn.Close(websocket.StatusNormalClosure, "")
}

type liveSession struct {
	hb     *HandlerBundle
	id     string
	ctrl   *wizard.Controller
	conn   *websocket.Conn
	codec  LiveCodec
	logger *zap.Logger

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

func (s *liveSession) run(ctx context.Context) {
	s.sendView(ctx, nil, nil)
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				s.logger.Debug("Live session read ended", zap.Error(err))
			}
			return
		}
		ev, err := s.codec.Decode(data)
		if err != nil {
			s.send(ctx, &LiveMessage{Type: MessageError, Error: "invalid frame"})
			continue
		}
		s.apply(ctx, ev)
	}
}

func (s *liveSession) apply(ctx context.Context, ev *LiveEvent) {
	switch ev.Type {
	case EventChange, EventBlur:
		f, ok := models.ParseField(ev.Field)
		if !ok {
			s.send(ctx, &LiveMessage{Type: MessageError, Error: "unknown field " + ev.Field})
			return
		}
		if ev.Type == EventChange {
			s.ctrl.Update(f, ev.Value)
		} else {
			s.ctrl.Touch(f)
		}
		s.sendView(ctx, nil, nil)
	case EventNext:
		res := s.ctrl.Advance()
		notice := noticeStepSaved
		if !res.Valid {
			notice = noticeStepInvalid
		}
		s.sendView(ctx, &res, &notice)
	case EventPrev:
		s.ctrl.Retreat()
		s.sendView(ctx, nil, nil)
	case EventValidate:
		if s.ctrl.SubmitAll() {
			s.sendView(ctx, nil, nil)
		} else {
			s.sendView(ctx, nil, &noticeFormInvalid)
		}
	case EventSubmit:
		s.wg.Add(1)
		go s.submit(ctx)
	case EventCancel:
		s.ctrl.CancelSubmission()
	case EventReset:
		s.ctrl.Reset()
		s.sendView(ctx, nil, &noticeReset)
	case EventSync:
		s.sendView(ctx, nil, nil)
	default:
		s.send(ctx, &LiveMessage{Type: MessageError, Error: "unknown event " + ev.Type})
	}
}

func (s *liveSession) submit(ctx context.Context) {
	defer s.wg.Done()

	ref, _, err := s.hb.Wizard.Submit(ctx, s.id)
	switch {
	case err == nil:
		s.send(ctx, &LiveMessage{Type: MessageSubmitted, SummaryRef: ref, Notice: &noticeSubmitted})
	case errors.Is(err, wizard.ErrFormInvalid):
		s.sendView(ctx, nil, &noticeFormInvalid)
	case errors.Is(err, wizard.ErrSubmissionCanceled):
		s.sendView(ctx, nil, &noticeCancelled)
	case errors.Is(err, wizard.ErrSubmissionPending):
		s.send(ctx, &LiveMessage{Type: MessageError, Error: wizard.ErrSubmissionPending.Error()})
	default:
		s.logger.Error("Submission failed", zap.Error(err))
		s.send(ctx, &LiveMessage{Type: MessageError, Error: "submission failed"})
	}
}

func (s *liveSession) sendView(ctx context.Context, res *wizard.AdvanceResult, notice *models.Notice) {
	view := s.ctrl.View()
	s.send(ctx, &LiveMessage{Type: MessageView, View: &view, Result: res, Notice: notice})
}

func (s *liveSession) send(ctx context.Context, msg *LiveMessage) {
	data, err := s.codec.Encode(msg)
	if err != nil {
		s.logger.Error("Failed to encode live frame", zap.Error(err))
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, liveWriteTimeout)
	defer cancel()
	if err := s.conn.Write(ctx, s.codec.MessageType(), data); err != nil {
		s.logger.Debug("Failed to write live frame", zap.Error(err))
	}
}
