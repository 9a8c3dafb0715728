package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/noah-isme/sma-roster-ledger/internal/repository"
)

// snapshot_migrate upgrades a roster snapshot file offline to the current
// record shape and prints what the migration changed.
func main() {
	var (
		inPath  string
		outPath string
		note    string
		dryRun  bool
	)

	flag.StringVar(&inPath, "in", "data/school_db_v6.json", "Snapshot file to read")
	flag.StringVar(&outPath, "out", "", "Where to write the upgraded snapshot (default: overwrite -in)")
	flag.StringVar(&note, "note", "رصيد سابق", "Note carried by synthetic balance events")
	flag.BoolVar(&dryRun, "dry-run", false, "Report only, do not write")
	flag.Parse()

	raw, err := os.ReadFile(inPath)
	if err != nil {
		log.Fatalf("failed to read snapshot: %v", err)
	}

	classes, report, err := repository.DecodeSnapshot(raw, note)
	if err != nil {
		log.Fatalf("snapshot is not decodable: %v", err)
	}

	students := 0
	for _, class := range classes {
		students += len(class.Students)
	}
	printReport(len(classes), students, report)

	if !report.Changed() {
		fmt.Println("Snapshot already current, nothing to write")
		return
	}
	if dryRun {
		fmt.Println("Dry run, snapshot left untouched")
		return
	}

	encoded, err := repository.EncodeSnapshot(classes)
	if err != nil {
		log.Fatalf("failed to encode snapshot: %v", err)
	}
	if outPath == "" {
		outPath = inPath
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		log.Fatalf("failed to write snapshot: %v", err)
	}
	fmt.Printf("Wrote %d bytes to %s\n", len(encoded), outPath)
}

func printReport(classes, students int, report repository.MigrationReport) {
	fmt.Printf("Classes: %d, Students: %d\n", classes, students)
	fmt.Printf("Upgraded records:    %d\n", report.Upgraded)
	fmt.Printf("Skipped unnamed:     %d\n", report.SkippedUnnamed)
	fmt.Printf("Dropped entries:     %d\n", report.DroppedEntries)
	fmt.Printf("Balance events:      %d\n", report.BalanceEvents)
	if len(report.DuplicateClasses) > 0 {
		fmt.Printf("Duplicate classes:   %s\n", strings.Join(report.DuplicateClasses, ", "))
	}
	if len(report.DuplicateNames) > 0 {
		fmt.Printf("Duplicate names:     %s\n", strings.Join(report.DuplicateNames, ", "))
	}
}
