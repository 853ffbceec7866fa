package exportimpl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/export"
	mock_export "github.com/orgball2608/reel-studio/internal/export/mocks"
	"github.com/orgball2608/reel-studio/internal/mediaio"
	mock_project "github.com/orgball2608/reel-studio/internal/repositories/project/mocks"
	mock_publication "github.com/orgball2608/reel-studio/internal/repositories/publication/mocks"
	mock_telegram "github.com/orgball2608/reel-studio/internal/telegram/mocks"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"github.com/orgball2608/reel-studio/pkg/retry"
	"go.uber.org/mock/gomock"
)

func testPackage() domain.Package {
	return domain.Package{
		ProjectID: "p1",
		Artifact:  domain.Artifact{URI: "file:///data/artifacts/a1.mp4", Codec: "mp4/h264", Duration: 3 * time.Second},
		Metadata:  domain.PublishMetadata{Caption: "sunset", Category: "Travel", Visibility: domain.VisibilityPublic},
	}
}

func sink(ctrl *gomock.Controller, name string, err error) *mock_export.MockSink {
	s := mock_export.NewMockSink(ctrl)
	s.EXPECT().Name().Return(name).AnyTimes()
	s.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(err)
	return s
}

func TestPublisherRecordsEverySink(t *testing.T) {
	ctrl := gomock.NewController(t)
	pubs := mock_publication.NewMockRepository(ctrl)

	ok := sink(ctrl, "storage", nil)
	bad := sink(ctrl, "telegram", errors.New("bot blocked"))

	pubs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, pub domain.Publication) (domain.Publication, error) {
			pub.ID = len(pub.Sink)
			return pub, nil
		}).Times(2)

	p := NewPublisher(logger.NewNop(), pubs, ok, nil, bad)
	got, err := p.Publish(context.Background(), testPackage())
	if err != nil {
		t.Fatalf("one sink succeeded, want nil error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d publications, want 2", len(got))
	}
	if got[0].Sink != "storage" || got[0].Status != domain.PublicationSucceeded || got[0].ID == 0 {
		t.Errorf("storage publication = %+v", got[0])
	}
	if got[1].Sink != "telegram" || got[1].Status != domain.PublicationFailed || got[1].Error == "" {
		t.Errorf("telegram publication = %+v", got[1])
	}
	if got[1].ArtifactURI != testPackage().Artifact.URI {
		t.Errorf("artifact uri = %q", got[1].ArtifactURI)
	}
}

func TestPublisherFailsWhenEverySinkFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := NewPublisher(logger.NewNop(), nil,
		sink(ctrl, "storage", errors.Wrap(errors.ErrNotFound, "artifact")),
		sink(ctrl, "telegram", errors.New("timeout")),
	)

	got, err := p.Publish(context.Background(), testPackage())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("joined error should keep the sink causes: %v", err)
	}
	for _, pub := range got {
		if pub.Status != domain.PublicationFailed {
			t.Errorf("%s: status %s", pub.Sink, pub.Status)
		}
	}
}

func TestPublisherKeepsResultWhenRecordingFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	pubs := mock_publication.NewMockRepository(ctrl)
	pubs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.Publication{}, errors.New("db down"))

	p := NewPublisher(logger.NewNop(), pubs, sink(ctrl, "storage", nil))
	got, err := p.Publish(context.Background(), testPackage())
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Sink != "storage" || got[0].Status != domain.PublicationSucceeded {
		t.Fatalf("publication lost: %+v", got[0])
	}
}

func TestServiceExport(t *testing.T) {
	ctrl := gomock.NewController(t)
	projects := mock_project.NewMockRepository(ctrl)
	renderer := mock_export.NewMockRenderer(ctrl)
	s := mock_export.NewMockSink(ctrl)

	comp := domain.Composition{
		Mode:  domain.MediaModeVideo,
		Clips: []domain.Clip{{ID: "c1", SourceURI: "a.mp4", TotalDuration: time.Second, TrimEnd: time.Second}},
	}
	art := domain.Artifact{URI: "file:///out/x.mp4", Codec: "mp4/h264", Duration: time.Second}
	meta := domain.PublishMetadata{Caption: "hello", Visibility: domain.VisibilityPublic}

	projects.EXPECT().Get(gomock.Any(), "p1").Return(domain.Project{ID: "p1", Title: "Trip", Composition: comp}, nil)
	renderer.EXPECT().Render(gomock.Any(), comp).Return(art, nil)
	s.EXPECT().Name().Return("storage").AnyTimes()
	s.EXPECT().Publish(gomock.Any(), domain.Package{ProjectID: "p1", Artifact: art, Composition: comp, Metadata: meta}).Return(nil)

	svc, err := NewService(ServiceOpts{
		Logger:    logger.NewNop(),
		Projects:  projects,
		Renderer:  renderer,
		Publisher: NewPublisher(logger.NewNop(), nil, s),
		Workers:   1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close(time.Second)

	res, err := svc.Export(context.Background(), export.Request{ProjectID: "p1", Metadata: meta})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Artifact != art || len(res.Publications) != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestServiceExportUnknownProject(t *testing.T) {
	ctrl := gomock.NewController(t)
	projects := mock_project.NewMockRepository(ctrl)
	projects.EXPECT().Get(gomock.Any(), "missing").Return(domain.Project{}, errors.Wrap(errors.ErrNotFound, "project not found"))

	svc, err := NewService(ServiceOpts{
		Logger:    logger.NewNop(),
		Projects:  projects,
		Renderer:  mock_export.NewMockRenderer(ctrl),
		Publisher: NewPublisher(logger.NewNop(), nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close(time.Second)

	_, err = svc.Export(context.Background(), export.Request{ProjectID: "missing"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func fastRetry() retry.Config {
	return retry.Config{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1}
}

func TestTelegramSinkSendsVideoWithRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_telegram.NewMockClient(ctrl)
	gomock.InOrder(
		client.EXPECT().SendVideo("/data/artifacts/a1.mp4", "sunset\n\n#travel").Return(errors.New("429 too many requests")),
		client.EXPECT().SendVideo("/data/artifacts/a1.mp4", "sunset\n\n#travel").Return(nil),
	)

	s := NewTelegramSink(logger.NewNop(), client, fastRetry())
	if err := s.Publish(context.Background(), testPackage()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestTelegramSinkPostsSequenceCover(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_telegram.NewMockClient(ctrl)

	pkg := testPackage()
	pkg.Artifact = domain.Artifact{URI: "file:///data/artifacts/a1.jpegseq", Codec: mediaio.CodecJPEGSeq}
	client.EXPECT().SendPhoto(mediaio.CoverFrame("/data/artifacts/a1.jpegseq"), gomock.Any()).Return(nil)

	s := NewTelegramSink(logger.NewNop(), client, fastRetry())
	if err := s.Publish(context.Background(), pkg); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestTelegramSinkSkipsPrivateReels(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_telegram.NewMockClient(ctrl)

	pkg := testPackage()
	pkg.Metadata.Visibility = domain.VisibilityPrivate
	s := NewTelegramSink(logger.NewNop(), client, fastRetry())
	if err := s.Publish(context.Background(), pkg); !errors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestCaption(t *testing.T) {
	tests := []struct {
		name string
		meta domain.PublishMetadata
		want string
	}{
		{name: "caption only", meta: domain.PublishMetadata{Caption: " hi "}, want: "hi"},
		{name: "category only", meta: domain.PublishMetadata{Category: "Street Food"}, want: "#street_food"},
		{name: "both", meta: domain.PublishMetadata{Caption: "hi", Category: "Dance"}, want: "hi\n\n#dance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Caption(tt.meta); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTelegramSinkAnnouncesOversizedVideo(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_telegram.NewMockClient(ctrl)

	path := filepath.Join(t.TempDir(), "a1.mp4")
	if err := os.WriteFile(path, make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}
	pkg := testPackage()
	pkg.Artifact.URI = mediaio.URI(path)

	want := "*New reel*\n\nsunset\n\n\\#travel\n\n_0:03, 2,048 bytes, mp4/h264_"
	client.EXPECT().SendMessageToChannel(want).Return(nil)

	s := NewTelegramSink(logger.NewNop(), client, fastRetry())
	s.limit = 1024
	if err := s.Publish(context.Background(), pkg); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
