// =============================================================================
// Invoicer - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the CLI, including:
//   - Import file discovery in the input directory
//   - File archival (moving imported files, copying exports)
//   - Export file naming
//   - Import summary logs
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to input_archive after a successful import
//   - Exported documents are copied to output_archive
//   - Files whose import failed remain in their original location
//   - Summary logs are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the CLI.
type FileManager struct {
	// InputDir is the directory scanned for import files.
	InputDir string

	// OutputDir is the directory where exports and summary logs are placed.
	OutputDir string

	// InputArchiveDir is the directory for archived import files.
	InputArchiveDir string

	// OutputArchiveDir is the directory for archived exports.
	OutputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in archives.
	// Example: input_archive/2024/01/15/invoices.xlsx
	UseTimestampSubdirs bool

	// ArchiveOnSuccess determines whether files are archived at all.
	ArchiveOnSuccess bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		ArchiveOnSuccess: true,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir, fm.OutputArchiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the regular files in the input directory that
// accept reports as importable, sorted by name. Subdirectories are not
// scanned.
func (fm *FileManager) DiscoverInputFiles(accept func(path string) bool) ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(fm.InputDir, entry.Name())
		if accept == nil || accept(path) {
			result = append(result, path)
		}
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an imported file to the input archive.
//
// RETURNS:
//   - The path to the archived file (the original path when archiving is off).
//   - An error if the file could not be moved.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	return fm.archive(fm.InputArchiveDir, filePath, true)
}

// ArchiveOutputFile copies an exported document to the output archive. The
// export stays in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	return fm.archive(fm.OutputArchiveDir, filePath, false)
}

func (fm *FileManager) archive(archiveDir, filePath string, move bool) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath, err := fm.prepareArchivePath(archiveDir, filePath)
	if err != nil {
		return "", err
	}

	if move {
		// Rename fails across devices; fall back to copy and remove.
		if os.Rename(filePath, archivePath) == nil {
			return archivePath, nil
		}
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", filepath.Base(filePath), err)
	}
	if move {
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove archived input %s: %w", filepath.Base(filePath), err)
		}
	}

	return archivePath, nil
}

// prepareArchivePath creates the archive directory and returns a path in it
// that does not collide with an earlier archived file of the same name.
func (fm *FileManager) prepareArchivePath(archiveDir, filePath string) (string, error) {
	dir := archiveDir
	if fm.UseTimestampSubdirs {
		// e.g. input_archive/2024/01/15
		dir = filepath.Join(archiveDir, filepath.FromSlash(time.Now().Format("2006/01/02")))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}

	archivePath := filepath.Join(dir, filepath.Base(filePath))

	// The same input file name is commonly reused for every import.
	if FileExists(archivePath) {
		ext := filepath.Ext(archivePath)
		stem := strings.TrimSuffix(archivePath, ext)
		archivePath = fmt.Sprintf("%s_%s_%s%s", stem, time.Now().Format("20060102_150405"), uuid.NewString()[:8], ext)
	}

	return archivePath, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {time}      - Current time (HHMMSS)
//     any key of params, e.g. {count}
//   - params: A map of placeholder values.
//   - ext: The extension forced onto the result, e.g. ".xml".
//
// EXAMPLE:
//
//	format: "invoices_{count}_{timestamp}.xml"
//	params: {"count": "12"}
//	output: "invoices_12_20240115_143022.xml"
func GenerateOutputFileName(format string, params map[string]string, ext string) string {
	now := time.Now()

	// Params come first so they can override the built-in placeholders.
	var pairs []string
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", value)
	}
	pairs = append(pairs,
		"{uuid}", uuid.NewString(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	)

	// A name must not escape the output directory.
	name := filepath.Base(strings.NewReplacer(pairs...).Replace(format))

	if ext != "" && !strings.EqualFold(filepath.Ext(name), ext) {
		name += ext
	}
	return name
}

// =============================================================================
// IMPORT SUMMARY
// =============================================================================

// ImportRunSummary contains summary information about an import run.
type ImportRunSummary struct {
	StartTime     time.Time
	EndTime       time.Time
	ImportedFiles []ImportedFileInfo
	FailedFiles   []FailedFileInfo
}

// ImportedFileInfo contains information about a successfully imported file.
type ImportedFileInfo struct {
	InputFile   string
	ArchivePath string
	BatchID     string
	Inserted    int
	Duplicates  []string
	Warnings    []string
}

// FailedFileInfo contains information about a file whose import failed.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// TotalInserted sums the inserted invoices of every imported file.
func (s ImportRunSummary) TotalInserted() int {
	n := 0
	for _, f := range s.ImportedFiles {
		n += f.Inserted
	}
	return n
}

// TotalDuplicates sums the skipped invoices of every imported file.
func (s ImportRunSummary) TotalDuplicates() int {
	n := 0
	for _, f := range s.ImportedFiles {
		n += len(f.Duplicates)
	}
	return n
}

// WriteSummaryLog writes an import summary to a log file.
//
// PARAMETERS:
//   - summary: The import run summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ImportRunSummary, outputDir string) (string, error) {
	summaryFileName := fmt.Sprintf("import_summary_%s.txt", summary.StartTime.Format("20060102_150405"))
	summaryPath := filepath.Join(outputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	if err := writeSummary(file, summary); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}

	return summaryPath, nil
}

func writeSummary(w io.Writer, summary ImportRunSummary) error {
	writer := bufio.NewWriter(w)
	rule := strings.Repeat("=", 80) + "\n"
	thin := strings.Repeat("-", 80) + "\n"

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Invoicer - Import Summary\n"+
		rule+"\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Imported:           %d\n"+
		"  Failed:             %d\n"+
		"  Invoices Inserted:  %d\n"+
		"  Duplicates Skipped: %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		len(summary.ImportedFiles)+len(summary.FailedFiles),
		len(summary.ImportedFiles),
		len(summary.FailedFiles),
		summary.TotalInserted(),
		summary.TotalDuplicates())

	if len(summary.ImportedFiles) > 0 {
		writer.WriteString("Imported Files:\n")
		writer.WriteString(thin)
		for _, f := range summary.ImportedFiles {
			fmt.Fprintf(writer, "  Input:      %s\n", f.InputFile)
			if f.ArchivePath != "" && f.ArchivePath != f.InputFile {
				fmt.Fprintf(writer, "  Archived:   %s\n", f.ArchivePath)
			}
			fmt.Fprintf(writer, "  Batch:      %s\n", f.BatchID)
			fmt.Fprintf(writer, "  Inserted:   %d\n", f.Inserted)
			if len(f.Duplicates) > 0 {
				fmt.Fprintf(writer, "  Duplicates: %s\n", strings.Join(f.Duplicates, ", "))
			}
			for _, warn := range f.Warnings {
				fmt.Fprintf(writer, "  Warning:    %s\n", warn)
			}
			writer.WriteString("\n")
		}
	}

	if len(summary.FailedFiles) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString(thin)
		for _, f := range summary.FailedFiles {
			fmt.Fprintf(writer, "  File:  %s\n", f.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", f.ErrorMessage)
		}
	}

	writer.WriteString(rule + "End of Summary\n")
	return writer.Flush()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies src to dst, keeping the source permissions.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// FileExists reports whether path names an existing file or directory.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
