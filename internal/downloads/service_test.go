package downloads

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jdbridge/jdbridge/internal/category"
	"github.com/jdbridge/jdbridge/internal/config"
	"github.com/jdbridge/jdbridge/internal/remote"
	"github.com/jdbridge/jdbridge/internal/remote/mock"
	"github.com/jdbridge/jdbridge/internal/session"
	"github.com/jdbridge/jdbridge/internal/testutil"
)

func newTestService(t *testing.T, connect bool) (*Service, *mock.Device, string) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	base := t.TempDir()

	resolver := category.NewResolver(config.DownloadsConfig{
		BasePath:          base,
		DefaultCategory:   "other",
		AllowedCategories: []string{"tv_show", "movie", "other"},
	}, logger)

	device := mock.NewDevice()
	sessions := session.NewManager(device, remote.Credentials{
		Username: "user@example.com",
		Password: "secret",
	}, logger)

	if connect {
		if err := sessions.Connect(context.Background()); err != nil {
			t.Fatalf("connect: %v", err)
		}
	}

	svc := NewService(sessions, resolver, NewTranslator(base, logger), logger)
	return svc, device, base
}

func TestAddDownload(t *testing.T) {
	svc, device, base := newTestService(t, true)

	ids, err := svc.AddDownload(context.Background(), DownloadRequest{
		Name:     "Show S01E01",
		Links:    []string{"https://host.example/file.rar"},
		Category: "tv_show",
	})
	if err != nil {
		t.Fatalf("AddDownload: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected one package id, got %v", ids)
	}

	wantDir := filepath.Join(base, "tv_show")
	if info, err := os.Stat(wantDir); err != nil || !info.IsDir() {
		t.Errorf("category directory %s not created: %v", wantDir, err)
	}

	recs, err := device.QueryDownloads(context.Background())
	if err != nil {
		t.Fatalf("QueryDownloads: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "Show S01E01" {
		t.Fatalf("unexpected remote packages: %+v", recs)
	}
	if recs[0].SaveTo != wantDir {
		t.Errorf("SaveTo = %q, want %q", recs[0].SaveTo, wantDir)
	}
}

func TestAddDownload_CleansSeasonName(t *testing.T) {
	svc, device, _ := newTestService(t, true)

	_, err := svc.AddDownload(context.Background(), DownloadRequest{
		Name:  "  Breaking Bad Stagione 3  ",
		Links: []string{"https://host.example/file.rar"},
	})
	if err != nil {
		t.Fatalf("AddDownload: %v", err)
	}

	recs, _ := device.QueryDownloads(context.Background())
	if recs[0].Name != "Breaking Bad S03" {
		t.Errorf("package name = %q, want %q", recs[0].Name, "Breaking Bad S03")
	}
}

func TestAddDownload_EmptyLinks(t *testing.T) {
	svc, device, _ := newTestService(t, true)

	_, err := svc.AddDownload(context.Background(), DownloadRequest{
		Name:  "Something",
		Links: nil,
	})
	if KindOf(err) != KindInvalidInput {
		t.Fatalf("error kind = %q, want %q (err: %v)", KindOf(err), KindInvalidInput, err)
	}
	if device.Calls("addLinks") != 0 {
		t.Errorf("remote was called despite validation failure")
	}
}

func TestAddDownload_InvalidCategory(t *testing.T) {
	svc, device, base := newTestService(t, true)

	_, err := svc.AddDownload(context.Background(), DownloadRequest{
		Name:     "Something",
		Links:    []string{"https://host.example/file.rar"},
		Category: "warez",
	})
	if KindOf(err) != KindInvalidCategory {
		t.Fatalf("error kind = %q, want %q (err: %v)", KindOf(err), KindInvalidCategory, err)
	}
	if device.Calls("addLinks") != 0 {
		t.Errorf("remote was called despite invalid category")
	}
	if _, statErr := os.Stat(filepath.Join(base, "warez")); !os.IsNotExist(statErr) {
		t.Errorf("directory created for rejected category")
	}
}

func TestAddDownload_NotConnected(t *testing.T) {
	svc, device, _ := newTestService(t, false)

	_, err := svc.AddDownload(context.Background(), DownloadRequest{
		Name:  "Something",
		Links: []string{"https://host.example/file.rar"},
	})
	if KindOf(err) != KindNotConnected {
		t.Fatalf("error kind = %q, want %q (err: %v)", KindOf(err), KindNotConnected, err)
	}
	if device.Calls("addLinks") != 0 {
		t.Errorf("remote was called while disconnected")
	}
}

func TestListDownloads_Progress(t *testing.T) {
	svc, device, base := newTestService(t, true)
	device.Seed(remote.PackageRecord{
		UUID:        "pkg-1",
		Name:        "Show S01E01",
		Status:      "downloading",
		BytesTotal:  1000,
		BytesLoaded: 250,
		SaveTo:      filepath.Join(base, "tv_show"),
	})

	pkgs, err := svc.ListDownloads(context.Background())
	if err != nil {
		t.Fatalf("ListDownloads: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("expected one package, got %d", len(pkgs))
	}
	p := pkgs[0]
	if p.Status != StatusRunning {
		t.Errorf("status = %q, want %q", p.Status, StatusRunning)
	}
	if p.Progress != 25.0 {
		t.Errorf("progress = %v, want 25.0", p.Progress)
	}
	if p.Category != "tv_show" {
		t.Errorf("category = %q, want tv_show", p.Category)
	}
}

func TestListLinkgrabber(t *testing.T) {
	svc, _, _ := newTestService(t, true)

	_, err := svc.AddDownload(context.Background(), DownloadRequest{
		Name:  "Staged",
		Links: []string{"https://host.example/file.rar"},
	})
	if err != nil {
		t.Fatalf("AddDownload: %v", err)
	}

	pkgs, err := svc.ListLinkgrabber(context.Background())
	if err != nil {
		t.Fatalf("ListLinkgrabber: %v", err)
	}
	if len(pkgs) != 1 || pkgs[0].Name != "Staged" {
		t.Fatalf("unexpected linkgrabber packages: %+v", pkgs)
	}
}

func TestStartDownloads_PartialFailure(t *testing.T) {
	svc, device, _ := newTestService(t, true)
	device.Seed(remote.PackageRecord{UUID: "known-1", Name: "A", Status: "paused"})

	result, err := svc.StartDownloads(context.Background(), []string{"known-1", "unknown-2"})
	if err != nil {
		t.Fatalf("StartDownloads: %v", err)
	}
	if len(result.Succeeded) != 1 || result.Succeeded[0] != "known-1" {
		t.Errorf("succeeded = %v, want [known-1]", result.Succeeded)
	}
	if len(result.Failed) != 1 || result.Failed[0].ID != "unknown-2" {
		t.Errorf("failed = %v, want unknown-2", result.Failed)
	}
	if device.Calls("startPackages") != 1 {
		t.Errorf("startPackages calls = %d, want 1", device.Calls("startPackages"))
	}

	recs, _ := device.QueryDownloads(context.Background())
	if recs[0].Status != "downloading" {
		t.Errorf("known package not started: status %q", recs[0].Status)
	}
}

func TestStartDownloads_AllUnknown(t *testing.T) {
	svc, device, _ := newTestService(t, true)

	result, err := svc.StartDownloads(context.Background(), []string{"nope"})
	if err != nil {
		t.Fatalf("StartDownloads: %v", err)
	}
	if len(result.Succeeded) != 0 || len(result.Failed) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if device.Calls("startPackages") != 0 {
		t.Errorf("startPackages was called with no valid ids")
	}
}

func TestPauseDownloads_EmptyTargetsAll(t *testing.T) {
	svc, device, _ := newTestService(t, true)
	device.Seed(remote.PackageRecord{UUID: "p1", Name: "A", Status: "downloading"})
	device.Seed(remote.PackageRecord{UUID: "p2", Name: "B", Status: "downloading"})

	result, err := svc.PauseDownloads(context.Background(), nil)
	if err != nil {
		t.Fatalf("PauseDownloads: %v", err)
	}
	if len(result.Succeeded) != 2 {
		t.Errorf("succeeded = %v, want both packages", result.Succeeded)
	}
	if len(result.Failed) != 0 {
		t.Errorf("failed = %v, want none", result.Failed)
	}

	recs, _ := device.QueryDownloads(context.Background())
	for _, rec := range recs {
		if rec.Status != "paused" {
			t.Errorf("package %s status = %q, want paused", rec.UUID, rec.Status)
		}
	}
}

func TestBulkControl_NotConnected(t *testing.T) {
	svc, _, _ := newTestService(t, false)

	_, err := svc.StartDownloads(context.Background(), nil)
	if KindOf(err) != KindNotConnected {
		t.Fatalf("error kind = %q, want %q", KindOf(err), KindNotConnected)
	}
}
