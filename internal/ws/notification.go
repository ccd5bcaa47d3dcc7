package ws

import (
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/stickclash/stickclash-backend/internal/score"
	rdbPkg "github.com/stickclash/stickclash-backend/pkg/redis"
	wsPkg "github.com/stickclash/stickclash-backend/pkg/websocket"
)

// NotificationWorker forwards match results published on Redis to every
// lobby connection, so leaderboard screens update without polling.
type NotificationWorker struct {
	redisClient *redis.Client
	generalHub  *wsPkg.GeneralHub
}

func NewNotificationWorker(rdb *redis.Client, hub *wsPkg.GeneralHub) *NotificationWorker {
	return &NotificationWorker{
		redisClient: rdb,
		generalHub:  hub,
	}
}

func (w *NotificationWorker) Run() {
	log.Info("Notification worker starting...")
	pubsub := w.redisClient.Subscribe(rdbPkg.Ctx, score.ResultChannel)
	defer pubsub.Close()

	for {
		msg, err := pubsub.ReceiveMessage(rdbPkg.Ctx)
		if err != nil {
			log.Errorf("Notification pub/sub error: %v", err)
			return
		}
		w.generalHub.Broadcast([]byte(msg.Payload))
	}
}
