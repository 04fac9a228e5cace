package summary

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestCollectDataDirs_ResolvesRelativeCSVPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "summary.ini")
	content := "[DEFAULT]\nifo = H1\n\n[datafind]\nsource = csv\npath = data\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	dirs := collectDataDirs([]string{configPath})
	if len(dirs) != 1 || dirs[0] != filepath.Join(dir, "data") {
		t.Fatalf("expected data dir, got %v", dirs)
	}
}

func TestCollectDataDirs_EmptyOnMissingFile(t *testing.T) {
	if dirs := collectDataDirs([]string{"/nonexistent/summary.ini"}); len(dirs) != 0 {
		t.Fatalf("expected 0 dirs for missing file, got %d", len(dirs))
	}
}

func TestCollectDataDirs_IgnoresSQLiteSource(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "summary.ini")
	content := "[datafind]\nsource = sqlite\npath = samples.db\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if dirs := collectDataDirs([]string{configPath}); len(dirs) != 0 {
		t.Fatalf("expected no data dirs, got %v", dirs)
	}
}

func TestIsRelevantChange_ConfigWrite(t *testing.T) {
	configPath := "/srv/summary/h1.ini"
	event := fsnotify.Event{Name: configPath, Op: fsnotify.Write}
	if !isRelevantChange(event, []string{configPath}, nil) {
		t.Fatal("expected config write to be relevant")
	}
}

func TestIsRelevantChange_DataCSV(t *testing.T) {
	dataDir := "/srv/summary/data"
	event := fsnotify.Event{Name: filepath.Join(dataDir, "H1-DMT-RANGE.csv"), Op: fsnotify.Create}
	if !isRelevantChange(event, []string{"/srv/summary/h1.ini"}, []string{dataDir}) {
		t.Fatal("expected CSV create in data dir to be relevant")
	}
}

func TestIsRelevantChange_IgnoresUnrelatedFile(t *testing.T) {
	event := fsnotify.Event{Name: "/srv/summary/notes.txt", Op: fsnotify.Write}
	if isRelevantChange(event, []string{"/srv/summary/h1.ini"}, []string{"/srv/summary/data"}) {
		t.Fatal("expected .txt file to be ignored")
	}
}

func TestIsRelevantChange_IgnoresRemoveOp(t *testing.T) {
	event := fsnotify.Event{Name: "/srv/summary/h1.ini", Op: fsnotify.Remove}
	if isRelevantChange(event, []string{"/srv/summary/h1.ini"}, nil) {
		t.Fatal("expected remove op to be ignored")
	}
}

func TestGenerationCoalescer_TriggersSerialRuns(t *testing.T) {
	var runCount int32
	var concurrent int32
	var maxConcurrent int32

	firstRunStarted := make(chan struct{})
	releaseFirstRun := make(chan struct{})
	coalescer := newGenerationCoalescer(func() {
		current := atomic.AddInt32(&concurrent, 1)
		for {
			previous := atomic.LoadInt32(&maxConcurrent)
			if current <= previous || atomic.CompareAndSwapInt32(&maxConcurrent, previous, current) {
				break
			}
		}

		runNumber := atomic.AddInt32(&runCount, 1)
		if runNumber == 1 {
			close(firstRunStarted)
			<-releaseFirstRun
		}
		atomic.AddInt32(&concurrent, -1)
	})

	var firstTrigger sync.WaitGroup
	firstTrigger.Add(1)
	go func() {
		defer firstTrigger.Done()
		coalescer.Trigger()
	}()
	<-firstRunStarted

	var extraTriggers sync.WaitGroup
	for i := 0; i < 3; i++ {
		extraTriggers.Add(1)
		go func() {
			defer extraTriggers.Done()
			coalescer.Trigger()
		}()
	}
	extraTriggers.Wait()

	if got := atomic.LoadInt32(&runCount); got != 1 {
		t.Fatalf("expected first run still in progress, got %d run(s)", got)
	}

	close(releaseFirstRun)
	firstTrigger.Wait()

	if got := atomic.LoadInt32(&runCount); got != 2 {
		t.Fatalf("expected coalesced follow-up run, got %d run(s)", got)
	}
	if got := atomic.LoadInt32(&maxConcurrent); got != 1 {
		t.Fatalf("expected serialized execution, max concurrency %d", got)
	}
}
