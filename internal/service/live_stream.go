package service

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/noah-isme/lynx-api/internal/dto"
)

// liveClient is one board stream. Every event triggers its own resolution pass;
// passes are not ordered against each other, so the last one written wins.
type liveClient struct {
	conn    *websocket.Conn
	send    chan dto.LiveBoardMessage
	options LiveConnectionOptions
	service *liveService
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

// ServeBoard pushes a fresh board on connect and after every event for the student.
// It blocks until the socket closes.
func (s *liveService) ServeBoard(conn *websocket.Conn, opts LiveConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	events, unsubscribe := s.Subscribe(opts.StudentID)
	defer unsubscribe()

	client := &liveClient{
		conn:    conn,
		send:    make(chan dto.LiveBoardMessage, liveBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	go client.writer()
	go client.pump(events)
	go client.refresh(nil)

	client.reader()
}

func (c *liveClient) pump(events <-chan dto.LiveEvent) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			go c.refresh(&event)
		case <-c.closed:
			return
		}
	}
}

// refresh runs a pass detached from the socket: closing the socket only drops the
// result.
func (c *liveClient) refresh(event *dto.LiveEvent) {
	board, err := c.service.board.Board(c.baseCtx, c.options.StudentID)

	message := dto.LiveBoardMessage{Type: liveMessageBoard, Board: board, Event: event}
	if err != nil {
		c.service.logger.Warn().Err(err).Str("student_id", c.options.StudentID).Msg("live board pass failed")
		message = dto.LiveBoardMessage{Type: liveMessageFailed, Event: event}
	}

	select {
	case <-c.closed:
		return
	default:
	}

	select {
	case c.send <- message:
	case <-c.closed:
	default:
		c.service.logger.Warn().Str("student_id", c.options.StudentID).Msg("dropping board update for slow client")
	}
}

func (c *liveClient) reader() {
	defer c.close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.service.logger.Debug().Err(err).Msg("live read loop ended")
			return
		}
		go c.refresh(nil)
	}
}

func (c *liveClient) writer() {
	defer c.close()

	ticker := time.NewTicker(livePingInterval)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			if err := c.conn.WriteJSON(message); err != nil {
				c.service.logger.Debug().Err(err).Msg("live write loop terminated")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("live ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *liveClient) close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}
