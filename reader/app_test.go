package reader

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Entries(ctx context.Context, feed Feed) ([]Entry, error) {
	args := m.Called(ctx, feed)
	entries, _ := args.Get(0).([]Entry)
	return entries, args.Error(1)
}

var _ = ginkgo.Describe("App", func() {
	var (
		ctx   context.Context
		feeds Feeds
		app   *App
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		var err error
		feeds, err = LoadFeeds("testdata/feeds.yaml")
		Expect(err).NotTo(HaveOccurred())
		app = New(Config{
			Log:    log.New(),
			Feeds:  feeds,
			Source: &FixtureSource{Latency: 5 * time.Millisecond},
		})
	})

	ginkgo.AfterEach(func() {
		app.Wait()
	})

	ginkgo.Describe("the menu", func() {
		ginkgo.It("is hidden by default", func() {
			Expect(app.Page().MenuHidden()).To(BeTrue())
		})

		ginkgo.It("toggles visibility on every click", func() {
			app.Menu().Click()
			Expect(app.Page().MenuHidden()).To(BeFalse())
			app.Menu().Click()
			Expect(app.Page().MenuHidden()).To(BeTrue())
		})
	})

	ginkgo.Describe("LoadFeed", func() {
		ginkgo.It("renders the entries asynchronously and then calls done", func() {
			done := make(chan struct{})
			Expect(app.LoadFeed(ctx, 0, func() { close(done) })).To(Succeed())
			Expect(app.Page().EntryCount()).To(Equal(0))

			Eventually(done).Should(BeClosed())
			Expect(app.Page().EntryCount()).To(Equal(1))
			Expect(app.Page().Title()).To(Equal("First"))
			Expect(app.LastError()).NotTo(HaveOccurred())
		})

		ginkgo.It("escapes entry content", func() {
			done := make(chan struct{})
			Expect(app.LoadFeed(ctx, 0, func() { close(done) })).To(Succeed())
			Eventually(done).Should(BeClosed())

			content := app.Page().Content()
			Expect(content).To(ContainSubstring("One &amp; Only"))
			Expect(content).To(ContainSubstring("&lt;b&gt;bold&lt;/b&gt;"))
			Expect(content).To(ContainSubstring(`href="http://example.com/first/1"`))
		})

		ginkgo.It("replaces the content when another feed is loaded", func() {
			first := make(chan struct{})
			Expect(app.LoadFeed(ctx, 0, func() { close(first) })).To(Succeed())
			Eventually(first).Should(BeClosed())
			before := app.Page().Content()

			second := make(chan struct{})
			Expect(app.LoadFeed(ctx, 1, func() { close(second) })).To(Succeed())
			Eventually(second).Should(BeClosed())

			Expect(app.Page().Content()).NotTo(Equal(before))
			Expect(app.Page().EntryCount()).To(Equal(2))
			Expect(app.Page().Title()).To(Equal("Second"))
		})

		ginkgo.It("rejects an out-of-range index without calling done", func() {
			called := false
			for _, index := range []int{-1, len(feeds)} {
				err := app.LoadFeed(ctx, index, func() { called = true })
				Expect(errors.Is(err, ErrFeedIndexOutOfRange)).To(BeTrue())
			}
			app.Wait()
			Expect(called).To(BeFalse())
			Expect(app.Page().Title()).To(BeEmpty())
		})

		ginkgo.It("accepts a nil callback", func() {
			Expect(app.LoadFeed(ctx, 1, nil)).To(Succeed())
			app.Wait()
			Expect(app.Page().EntryCount()).To(Equal(2))
		})

		ginkgo.It("calls done and keeps the page when the source fails", func() {
			source := &mockSource{}
			source.On("Entries", mock.Anything, feeds[0]).Return(nil, errors.New("feed unavailable"))
			failing := New(Config{Log: log.New(), Feeds: feeds, Source: source})

			done := make(chan struct{})
			Expect(failing.LoadFeed(ctx, 0, func() { close(done) })).To(Succeed())
			Eventually(done).Should(BeClosed())
			failing.Wait()

			Expect(failing.LastError()).To(MatchError("feed unavailable"))
			Expect(failing.Page().EntryCount()).To(Equal(0))
			Expect(failing.Page().Title()).To(BeEmpty())
			source.AssertExpectations(ginkgo.GinkgoT())
		})

		ginkgo.It("stops waiting on the source when the context is cancelled", func() {
			slow := New(Config{Log: log.New(), Feeds: feeds, Source: &FixtureSource{Latency: time.Hour}})
			cctx, cancel := context.WithCancel(ctx)

			done := make(chan struct{})
			Expect(slow.LoadFeed(cctx, 0, func() { close(done) })).To(Succeed())
			cancel()

			Eventually(done).Should(BeClosed())
			slow.Wait()
			Expect(slow.LastError()).To(MatchError(context.Canceled))
		})
	})

	ginkgo.Describe("SelectFeed", func() {
		ginkgo.It("loads the feed and hides the menu", func() {
			app.Menu().Click()
			Expect(app.Page().MenuHidden()).To(BeFalse())

			done := make(chan struct{})
			Expect(app.SelectFeed(ctx, 1, func() { close(done) })).To(Succeed())
			Eventually(done).Should(BeClosed())

			Expect(app.Page().MenuHidden()).To(BeTrue())
			Expect(app.Page().Title()).To(Equal("Second"))
		})

		ginkgo.It("leaves the menu open for an invalid index", func() {
			app.Menu().Click()
			Expect(app.SelectFeed(ctx, 7, nil)).To(MatchError(ErrFeedIndexOutOfRange))
			Expect(app.Page().MenuHidden()).To(BeFalse())
		})
	})

	ginkgo.It("does not share state with the caller's feed list", func() {
		feeds[0].Name = "mutated"
		Expect(app.Feeds()[0].Name).To(Equal("First"))
	})
})
