package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_SubscriberGetsCurrentValueImmediately(t *testing.T) {
	f := newFeed(42)

	ch, cancel := f.Subscribe()
	defer cancel()

	v := <-ch
	assert.Equal(t, 42, v)
}

func TestFeed_PublishReachesAllSubscribers(t *testing.T) {
	f := newFeed(0)

	ch1, cancel1 := f.Subscribe()
	defer cancel1()
	ch2, cancel2 := f.Subscribe()
	defer cancel2()

	<-ch1
	<-ch2

	f.publish(7)

	assert.Equal(t, 7, <-ch1)
	assert.Equal(t, 7, <-ch2)
	assert.Equal(t, 7, f.Current())
}

func TestFeed_SlowSubscriberOnlySeesLatest(t *testing.T) {
	f := newFeed(0)

	ch, cancel := f.Subscribe()
	defer cancel()

	// Subscriber never read the initial value; publishes must not block.
	f.publish(1)
	f.publish(2)
	f.publish(3)

	v := <-ch
	assert.Equal(t, 3, v, "stale values are conflated away")
}

func TestFeed_CancelClosesChannel(t *testing.T) {
	f := newFeed(0)

	ch, cancel := f.Subscribe()
	<-ch
	cancel()
	cancel() // second cancel is a no-op

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel must not panic or resurrect the channel.
	f.publish(5)
}

func TestFeed_CloseAllDetachesEverySubscriber(t *testing.T) {
	f := newFeed(0)

	ch1, cancel1 := f.Subscribe()
	ch2, _ := f.Subscribe()
	<-ch1
	<-ch2

	f.closeAll()

	_, open1 := <-ch1
	_, open2 := <-ch2
	require.False(t, open1)
	require.False(t, open2)

	cancel1() // cancel after closeAll is a no-op
}
