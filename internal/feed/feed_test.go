package feed_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/feed"
	feed_mocks "gitlab.ozon.dev/pupkingeorgij/dispatch/internal/feed/mocks"
	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/order"
)

func TestFeedPublishesRecordedEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	producer := feed_mocks.NewMockProducer(ctrl)

	published := make(chan []byte, 1)
	producer.EXPECT().
		Publish(gomock.Any(), []byte("o1"), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ []byte, value []byte) error {
			published <- value
			return nil
		})
	producer.EXPECT().Close().Return(nil)

	f := feed.New(producer, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go f.Run(ctx)

	o := &order.Order{ID: "o1", CustomerName: "Ann", Status: order.StatusCreated}
	f.Record(feed.TypeOrderCreated, "o1", o)

	select {
	case value := <-published:
		var ev feed.Event
		require.NoError(t, json.Unmarshal(value, &ev))
		assert.Equal(t, feed.TypeOrderCreated, ev.Type)
		assert.Equal(t, "o1", ev.OrderID)
		require.NotNil(t, ev.Order)
		assert.Equal(t, "Ann", ev.Order.CustomerName)
		assert.False(t, ev.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("feed event was not published")
	}

	cancel()
	f.Shutdown()
}

func TestFeedPublishErrorDoesNotPropagate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	producer := feed_mocks.NewMockProducer(ctrl)

	done := make(chan struct{}, 1)
	producer.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, []byte, []byte) error {
			done <- struct{}{}
			return assert.AnError
		})
	producer.EXPECT().Close().Return(nil)

	f := feed.New(producer, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go f.Run(ctx)

	f.Record(feed.TypeOrderDeleted, "o1", nil)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish was not attempted")
	}

	cancel()
	f.Shutdown()
}

func TestConsoleProducer(t *testing.T) {
	p := feed.NewConsoleProducer(zap.NewNop())
	require.NoError(t, p.Publish(context.Background(), []byte("k"), []byte("v")))
	require.NoError(t, p.Close())
}
