//go:build integration

package kafka_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cachemem "github.com/Gunvolt24/orderstore/internal/cache/memory"
	"github.com/Gunvolt24/orderstore/internal/domain"
	ikafka "github.com/Gunvolt24/orderstore/internal/kafka"
	pgrepo "github.com/Gunvolt24/orderstore/internal/repo/postgres"
	"github.com/Gunvolt24/orderstore/internal/testutil"
	"github.com/Gunvolt24/orderstore/internal/usecase"
	"github.com/Gunvolt24/orderstore/pkg/logger"
	"github.com/Gunvolt24/orderstore/pkg/validate"
)

var reUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func safe(t *testing.T) string { return reUnsafe.ReplaceAllString(t.Name(), "-") }

type stack struct {
	ctx     context.Context
	repo    *pgrepo.OrderRepository
	svc     *usecase.OrderService
	log     *logger.ZapLogger
	brokers []string
	topic   string
	group   string
}

// newStack — Postgres + Redpanda в контейнерах, реальный репозиторий и сервис, уникальный топик.
func newStack(t *testing.T) *stack {
	t.Helper()

	// длинный контекст только на старт контейнеров
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancelStart)

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopPG(context.Background()) })

	kf, stopKF, err := testutil.StartKafkaTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopKF(context.Background()) })

	// короткий контекст на сам тест
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	t.Cleanup(cancel)

	logg, closer, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })

	topic, group := testutil.UniqueTopicAndGroup("orders-" + safe(t))
	require.NoError(t, testutil.EnsureTopic(ctx, kf.Brokers[0], topic))

	repo := pgrepo.NewOrderRepository(pg.Pool)
	svc := usecase.NewOrderService(repo, cachemem.NewLRUCacheTTL(100, time.Minute), logg, validate.NewOrderValidator())

	return &stack{ctx: ctx, repo: repo, svc: svc, log: logg, brokers: kf.Brokers, topic: topic, group: group}
}

// startConsumer — запускает консьюмер в горутине. Возвращённый stop идемпотентен
// и дополнительно вызывается в t.Cleanup.
func (s *stack) startConsumer(t *testing.T, saver interface {
	SaveFromMessage(ctx context.Context, raw []byte) error
}, startOffset string) (stop func()) {
	t.Helper()

	consumer := ikafka.NewConsumer(&ikafka.ConsumerConfig{
		Brokers:        s.brokers,
		Topic:          s.topic,
		GroupID:        s.group,
		StartOffset:    startOffset,
		ProcessTimeout: 3 * time.Second,
		RetryInitial:   100 * time.Millisecond,
		RetryMax:       time.Second,
	}, saver, s.log)

	runCtx, cancelRun := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = consumer.Run(runCtx)
	}()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			cancelRun()
			<-done
			// Close выводит участника из группы: партиция сразу уходит следующему консьюмеру
			_ = consumer.Close()
		})
	}
	t.Cleanup(stop)
	return stop
}

// waitOrder — ждём появления заказа в БД.
func (s *stack) waitOrder(t *testing.T, orderID string) *domain.Order {
	t.Helper()

	deadline := time.Now().Add(25 * time.Second)
	for {
		got, err := s.repo.GetByOrderID(s.ctx, orderID)
		require.NoError(t, err)
		if got != nil {
			return got
		}
		if time.Now().After(deadline) {
			t.Fatalf("order %s not saved in time", orderID)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// 1) Валидное сообщение сохраняется
func TestKafka_Valid_Saved_TC(t *testing.T) {
	s := newStack(t)
	s.startConsumer(t, s.svc, "first")

	req := testutil.MakeRequest(testutil.WithRequestItems(2))
	require.NoError(t, testutil.ProduceJSON(s.ctx, s.brokers, s.topic, req))

	got := s.waitOrder(t, req.BusinessOrderID)
	require.Equal(t, req.BusinessOrderID, got.OrderID)
	require.Len(t, got.Items, 2)
	require.Equal(t, int64(100), got.Items[0].ProductID)
}

// 2) Постоянные ошибки пропускаются (коммит), следующее валидное сохраняется
func TestKafka_Skip_Permanent_Then_SaveValid_TC(t *testing.T) {
	s := newStack(t)
	s.startConsumer(t, s.svc, "first")

	noItems := testutil.MakeRequest(testutil.WithRequestItems(0)) // ValidateCreate требует позиции
	badProduct := testutil.MakeRequest()
	badProduct.Items[0].ExternalProductID = "77abc" // ошибка маппинга
	ok := testutil.MakeRequest()

	require.NoError(t, testutil.ProduceJSON(s.ctx, s.brokers, s.topic,
		"not-a-json",
		`{"businessOrderId":"X","unknown":1}`,
		noItems,
		badProduct,
		ok,
	))

	s.waitOrder(t, ok.BusinessOrderID)

	for _, id := range []string{noItems.BusinessOrderID, badProduct.BusinessOrderID} {
		got, err := s.repo.GetByOrderID(s.ctx, id)
		require.NoError(t, err)
		require.Nil(t, got, "order %s must be skipped", id)
	}
}

// 3) Повторная доставка: дубликат коммитится, запись одна, позиции не «раздуты»
func TestKafka_DuplicateMessage_SingleRecord_TC(t *testing.T) {
	s := newStack(t)
	s.startConsumer(t, s.svc, "first")

	dup := testutil.MakeRequest(testutil.WithRequestItems(3))
	next := testutil.MakeRequest()
	require.NoError(t, testutil.ProduceJSON(s.ctx, s.brokers, s.topic, dup, dup, next))

	// next стоит после дубликата: если дубликат не закоммичен, до next не дойдём
	s.waitOrder(t, next.BusinessOrderID)

	got := s.waitOrder(t, dup.BusinessOrderID)
	require.Len(t, got.Items, 3)
}

// 4) StartOffset="last": сообщения, опубликованные до старта консьюмера, игнорируются
func TestKafka_StartOffset_Last_IgnoresOld_TC(t *testing.T) {
	s := newStack(t)

	old := testutil.MakeRequest()
	require.NoError(t, testutil.ProduceJSON(s.ctx, s.brokers, s.topic, old))

	s.startConsumer(t, s.svc, "last")

	// Публикуем новое несколько раз до появления в БД: одно из сообщений
	// гарантированно окажется после позиции, с которой читает консьюмер.
	fresh := testutil.MakeRequest()
	deadline := time.Now().Add(25 * time.Second)
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	for {
		require.NoError(t, testutil.ProduceJSON(s.ctx, s.brokers, s.topic, fresh))

		got, err := s.repo.GetByOrderID(s.ctx, fresh.BusinessOrderID)
		require.NoError(t, err)
		if got != nil {
			gotOld, err := s.repo.GetByOrderID(s.ctx, old.BusinessOrderID)
			require.NoError(t, err)
			require.Nil(t, gotOld)
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("order %s not saved in time", fresh.BusinessOrderID)
		}
		<-ticker.C
	}
}

// 5) At-least-once: временная ошибка без коммита => передоставка после перезапуска
func TestKafka_Redelivery_AfterRestart_NoCommit_TC(t *testing.T) {
	s := newStack(t)

	req := testutil.MakeRequest()
	require.NoError(t, testutil.ProduceJSON(s.ctx, s.brokers, s.topic, req))

	// Фаза 1: всегда временная ошибка => оффсет НЕ коммитится
	stopFailing := s.startConsumer(t, alwaysTransientSaver{}, "first")
	time.Sleep(3 * time.Second)
	stopFailing()

	// Фаза 2: та же группа, нормальный сервис
	s.startConsumer(t, s.svc, "first")
	s.waitOrder(t, req.BusinessOrderID)
}

// alwaysTransientSaver — имитация недоступной БД.
type alwaysTransientSaver struct{}

func (alwaysTransientSaver) SaveFromMessage(context.Context, []byte) error {
	return domain.ErrPersistence
}
