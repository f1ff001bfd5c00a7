package handlers

import (
	"io"
	"net/http"
	"time"

	"pub_pos_backend/internal/live"
	"pub_pos_backend/internal/metrics"
	"pub_pos_backend/internal/middleware"
	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/repositories"
	"pub_pos_backend/internal/session"
	"pub_pos_backend/internal/store"
	"pub_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const defaultHeartbeat = 25 * time.Second

type liveFeed struct {
	decode  live.Decoder[any]
	visible func(sess *session.Session, item any) bool
}

// LiveHandler streams collection snapshots over server-sent events. Each client
// gets its own view; every event carries the full ordered list.
type LiveHandler struct {
	src       live.Subscriber
	metrics   *metrics.Metrics
	feeds     map[string]liveFeed
	heartbeat time.Duration
}

func NewLiveHandler(src live.Subscriber, m *metrics.Metrics) *LiveHandler {
	return &LiveHandler{
		src:       src,
		metrics:   m,
		heartbeat: defaultHeartbeat,
		feeds: map[string]liveFeed{
			repositories.CollectionMenu:     {decode: asAny(repositories.DecodeMenuItem)},
			repositories.CollectionOrders:   {decode: asAny(repositories.DecodeOrder)},
			repositories.CollectionSettings: {decode: asAny(repositories.DecodeSettings)},
			repositories.CollectionStaff: {
				decode: asAny(repositories.DecodeStaff),
				visible: func(sess *session.Session, item any) bool {
					s, ok := item.(models.Staff)
					return ok && (s.Role != models.RoleSuperadmin || (sess != nil && sess.Role == models.RoleSuperadmin))
				},
			},
		},
	}
}

func asAny[T any](decode live.Decoder[T]) live.Decoder[any] {
	return func(doc store.Document) any { return decode(doc) }
}

type liveEvent struct {
	Collection string `json:"collection"`
	Seq        uint64 `json:"seq"`
	Data       []any  `json:"data"`
}

// Stream returns the SSE handler for collection. The first event is the current
// snapshot; later events follow each change. A terminal subscription error is sent
// as an "error" event before the stream closes.
func (h *LiveHandler) Stream(collection string) gin.HandlerFunc {
	feed, known := h.feeds[collection]
	return func(c *gin.Context) {
		if !known {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Unknown live collection.", collection))
			return
		}
		ctx := c.Request.Context()

		view := live.Watch(ctx, h.src, collection, repositories.ViewOrder(collection), feed.decode)
		defer view.Close()
		if err := view.Wait(ctx); err != nil {
			utils.LogError(err, "LiveHandler.Stream: could not open "+collection)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeUnavailable, "Live data is unavailable.", err.Error()))
			return
		}

		sess, _ := middleware.CurrentSession(c)
		defer h.metrics.LiveClientConnected(collection)()

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		sent := false
		var lastSeq uint64
		send := func() {
			st := view.State()
			if sent && st.Seq <= lastSeq {
				return
			}
			sent, lastSeq = true, st.Seq
			items := st.Items
			if feed.visible != nil {
				kept := items[:0]
				for _, it := range items {
					if feed.visible(sess, it) {
						kept = append(kept, it)
					}
				}
				items = kept
			}
			c.SSEvent("snapshot", liveEvent{Collection: collection, Seq: st.Seq, Data: items})
		}

		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		c.Stream(func(w io.Writer) bool {
			if !sent {
				send()
				return true
			}
			select {
			case <-ctx.Done():
				return false
			case <-ticker.C:
				c.SSEvent("ping", time.Now().Unix())
				return true
			case _, open := <-view.Changes():
				if !open {
					if err := view.Err(); err != nil {
						c.SSEvent("error", gin.H{"message": err.Error()})
					}
					return false
				}
				send()
				return true
			}
		})
	}
}
