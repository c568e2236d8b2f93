package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
	)
	if err := fm.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() error = %v", err)
	}
	return fm
}

func touch(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newTestManager(t)

	for _, name := range []string{"b.xlsx", "a.json", "notes.txt", ".hidden.csv"} {
		touch(t, filepath.Join(fm.InputDir, name), "x")
	}
	if err := os.Mkdir(filepath.Join(fm.InputDir, "sub.csv"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := fm.DiscoverInputFiles(func(p string) bool {
		return !strings.HasSuffix(p, ".txt")
	})
	if err != nil {
		t.Fatalf("DiscoverInputFiles() error = %v", err)
	}

	if len(files) != 2 || filepath.Base(files[0]) != "a.json" || filepath.Base(files[1]) != "b.xlsx" {
		t.Errorf("files = %v; want [a.json b.xlsx]", files)
	}
}

func TestArchiveInputFile(t *testing.T) {
	fm := newTestManager(t)

	first := filepath.Join(fm.InputDir, "march.csv")
	touch(t, first, "one")
	archived1, err := fm.ArchiveInputFile(first)
	if err != nil {
		t.Fatalf("ArchiveInputFile() error = %v", err)
	}
	if FileExists(first) {
		t.Error("input file still present after archival")
	}

	// Same name again must not overwrite the first archive.
	touch(t, first, "two")
	archived2, err := fm.ArchiveInputFile(first)
	if err != nil {
		t.Fatalf("ArchiveInputFile() second error = %v", err)
	}
	if archived1 == archived2 {
		t.Fatalf("second archive reused %s", archived1)
	}

	data, _ := os.ReadFile(archived1)
	if string(data) != "one" {
		t.Errorf("first archive = %q; want one", data)
	}
}

func TestArchive_Disabled(t *testing.T) {
	fm := newTestManager(t)
	fm.ArchiveOnSuccess = false

	path := filepath.Join(fm.InputDir, "keep.json")
	touch(t, path, "[]")

	got, err := fm.ArchiveInputFile(path)
	if err != nil || got != path || !FileExists(path) {
		t.Errorf("ArchiveInputFile() = (%s, %v); file must stay put", got, err)
	}
}

func TestArchiveOutputFile_Copies(t *testing.T) {
	fm := newTestManager(t)
	fm.UseTimestampSubdirs = true

	path := filepath.Join(fm.OutputDir, "invoices.xml")
	touch(t, path, "<invoices/>")

	archived, err := fm.ArchiveOutputFile(path)
	if err != nil {
		t.Fatalf("ArchiveOutputFile() error = %v", err)
	}
	if !FileExists(path) || !FileExists(archived) {
		t.Error("output must be copied, not moved")
	}
	if !strings.Contains(archived, time.Now().Format("2006")) {
		t.Errorf("archive path %s has no date subdirectory", archived)
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	tests := []struct {
		name   string
		format string
		params map[string]string
		check  func(string) bool
	}{
		{
			name:   "count placeholder and extension kept",
			format: "invoices_{count}.xml",
			params: map[string]string{"count": "12"},
			check:  func(s string) bool { return s == "invoices_12.xml" },
		},
		{
			name:   "extension appended",
			format: "export_{date}",
			check:  func(s string) bool { return strings.HasSuffix(s, ".xml") && len(s) == len("export_20060102.xml") },
		},
		{
			name:   "uuid is unique per call",
			format: "{uuid}.xml",
			check:  func(s string) bool { return len(s) == 36+4 },
		},
		{
			name:   "path separators dropped",
			format: "../../etc/{count}",
			params: map[string]string{"count": "1"},
			check:  func(s string) bool { return s == "1.xml" },
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateOutputFileName(tt.format, tt.params, ".xml")
			if !tt.check(got) {
				t.Errorf("GenerateOutputFileName(%q) = %q", tt.format, got)
			}
		})
	}
}

func TestWriteSummaryLog(t *testing.T) {
	fm := newTestManager(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	summary := ImportRunSummary{
		StartTime: start,
		EndTime:   start.Add(2 * time.Second),
		ImportedFiles: []ImportedFileInfo{
			{InputFile: "a.json", BatchID: "b-1", Inserted: 3, Duplicates: []string{"IN-1"}},
			{InputFile: "b.xlsx", BatchID: "b-2", Inserted: 1, Warnings: []string{"Row 3 is missing invoiceNo. Skipping..."}},
		},
		FailedFiles: []FailedFileInfo{{InputFile: "c.csv", ErrorMessage: "row 2: bad price"}},
	}

	if summary.TotalInserted() != 4 || summary.TotalDuplicates() != 1 {
		t.Errorf("totals = %d/%d", summary.TotalInserted(), summary.TotalDuplicates())
	}

	path, err := WriteSummaryLog(summary, fm.OutputDir)
	if err != nil {
		t.Fatalf("WriteSummaryLog() error = %v", err)
	}
	if filepath.Base(path) != "import_summary_20240301_100000.txt" {
		t.Errorf("path = %s", path)
	}

	data, _ := os.ReadFile(path)
	for _, want := range []string{"Total Files:        3", "Invoices Inserted:  4", "Duplicates: IN-1", "Row 3 is missing", "Error: row 2: bad price"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("summary missing %q", want)
		}
	}
}
