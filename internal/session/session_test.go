package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/graphpad/internal/session"
	"github.com/inamate/graphpad/internal/vec"
)

type peer struct {
	t    *testing.T
	conn *websocket.Conn
	seq  int64
}

func startHub(t *testing.T) (*session.Hub, string) {
	t.Helper()
	hub := session.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(session.Handler(hub, nil))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv.URL
}

func dial(t *testing.T, url string) *peer {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	conn.SetReadLimit(1 << 20)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	p := &peer{t: t, conn: conn}
	welcome := p.read()
	require.Equal(t, session.TypeWelcome, welcome.Type)
	return p
}

func (p *peer) read() session.Message {
	p.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var msg session.Message
	require.NoError(p.t, wsjson.Read(ctx, p.conn, &msg))
	return msg
}

// call sends a request and returns the reply carrying its sequence number.
func (p *peer) call(typ string, payload any) session.Message {
	p.t.Helper()
	p.seq++
	data, err := json.Marshal(payload)
	require.NoError(p.t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(p.t, wsjson.Write(ctx, p.conn, session.Message{Type: typ, Seq: p.seq, Payload: data}))

	reply := p.read()
	require.Equal(p.t, p.seq, reply.Seq)
	return reply
}

func frame(t *testing.T, msg session.Message) session.FramePayload {
	t.Helper()
	require.Equal(t, session.TypeFrame, msg.Type, string(msg.Payload))
	var f session.FramePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &f))
	return f
}

func errorCode(t *testing.T, msg session.Message) string {
	t.Helper()
	require.Equal(t, session.TypeError, msg.Type)
	var e session.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &e))
	return e.Code
}

func TestWelcomeCarriesSessionID(t *testing.T) {
	_, url := startHub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var msg session.Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	require.Equal(t, session.TypeWelcome, msg.Type)

	var w session.WelcomePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &w))
	assert.True(t, strings.HasPrefix(w.SessionID, "sess_"), w.SessionID)
	assert.NotEmpty(t, w.ClientID)
}

func TestLoadAndDrag(t *testing.T) {
	_, url := startHub(t)
	p := dial(t, url)

	f := frame(t, p.call(session.TypeDiagramLoad, session.LoadPayload{}))
	require.NotEmpty(t, f.Commands)
	require.Len(t, f.Points, 3)
	assert.Equal(t, "a", f.Points[0].ID)

	a := vec.Transform(f.Points[0].Position, f.Viewport.View)
	f = frame(t, p.call(session.TypeDragStart, session.DragStartPayload{X: a.X + 3, Y: a.Y}))
	assert.Equal(t, "a", f.Dragging)

	f = frame(t, p.call(session.TypeDragMove, session.DragMovePayload{Movement: vec.V(f.Viewport.ScaleX, 0)}))
	assert.InDelta(t, 0, f.Points[0].Position.X, 1e-9)
	assert.InDelta(t, 1, f.Points[0].Position.Y, 1e-9)
	assert.Equal(t, "dragging", f.Points[0].State)

	f = frame(t, p.call(session.TypeDragEnd, nil))
	assert.Empty(t, f.Dragging)
	assert.Equal(t, "idle", f.Points[0].State)
}

func TestErrorsGoToTheSender(t *testing.T) {
	hub, url := startHub(t)
	p1 := dial(t, url)
	p2 := dial(t, url)
	require.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, 10*time.Millisecond)

	assert.Equal(t, session.CodeNoDiagram, errorCode(t, p1.call(session.TypeRender, nil)))

	frame(t, p1.call(session.TypeDiagramLoad, session.LoadPayload{}))
	assert.Equal(t, session.CodeUnknownPoint, errorCode(t, p1.call(session.TypeDragStart, session.DragStartPayload{PointID: "zzz"})))
	assert.Equal(t, session.CodeNoDrag, errorCode(t, p1.call(session.TypeDragMove, session.DragMovePayload{})))
	assert.Equal(t, session.CodeUnknownType, errorCode(t, p1.call("teleport", nil)))
	assert.Equal(t, session.CodeBadRequest, errorCode(t, p1.call(session.TypeViewportResize, "wide")))
	assert.Equal(t, session.CodeInvalidViewport, errorCode(t, p1.call(session.TypeViewportResize, session.ResizePayload{Width: -1, Height: 1})))

	// p2 has its own engine and saw none of p1's traffic: its next
	// message is the answer to its own request.
	assert.Equal(t, session.CodeNoDiagram, errorCode(t, p2.call(session.TypeRender, nil)))
}

func TestSingularScopeReportsNotInvertible(t *testing.T) {
	_, url := startHub(t)
	p := dial(t, url)

	diagram := json.RawMessage(`{"elements":[
		{"id":"flat","type":"group","transform":{"scale":{"x":0,"y":1}},"children":[
			{"id":"p","type":"movablePoint","name":"p","data":{"at":{"x":1,"y":1}}}
		]}]}`)
	frame(t, p.call(session.TypeDiagramLoad, session.LoadPayload{Diagram: diagram}))

	assert.Equal(t, session.CodeNotInvertible, errorCode(t, p.call(session.TypeDragStart, session.DragStartPayload{PointID: "p"})))
	assert.Equal(t, session.CodeNotInvertible, errorCode(t, p.call(session.TypePointNudge, session.NudgePayload{PointID: "p", Key: "ArrowUp"})))
}

func TestInvalidDiagram(t *testing.T) {
	_, url := startHub(t)
	p := dial(t, url)

	bad := json.RawMessage(`{"elements":[{"id":"f","type":"plot.ofX","data":{"expr":"x +"}}]}`)
	assert.Equal(t, session.CodeInvalidDiagram, errorCode(t, p.call(session.TypeDiagramLoad, session.LoadPayload{Diagram: bad})))
}

func TestClockMessages(t *testing.T) {
	_, url := startHub(t)
	p := dial(t, url)
	frame(t, p.call(session.TypeDiagramLoad, session.LoadPayload{}))

	f := frame(t, p.call(session.TypeClockStart, nil))
	assert.True(t, f.Running)

	f = frame(t, p.call(session.TypeClockTick, session.ClockTickPayload{DT: 0.25}))
	assert.InDelta(t, 0.25, f.Time, 1e-12)

	assert.Equal(t, session.CodeOutOfRange, errorCode(t, p.call(session.TypeClockSet, session.ClockSetPayload{Time: -1})))

	f = frame(t, p.call(session.TypeClockStop, nil))
	assert.False(t, f.Running)
	assert.Zero(t, f.Time)
}

func TestHubForgetsClosedSessions(t *testing.T) {
	hub, url := startHub(t)
	p := dial(t, url)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	p.conn.Close(websocket.StatusNormalClosure, "bye")
	require.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSendOverflowClosesSession(t *testing.T) {
	hub := session.NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		// Nothing drains the queue.
		c := session.NewClient(hub, conn, "sess", "cli")
		for range 300 {
			c.Send(&session.Message{Type: session.TypeFrame})
		}
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, srv.URL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	_, _, err = conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}
