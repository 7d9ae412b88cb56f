package results

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile creates a fixture file inside a test temp dir
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestLoadStatistics(t *testing.T) {
	path := writeFile(t, "nn.csv", strings.Join([]string{
		"target,val_rmse_mean,val_rmse_variance,test_rmse_mean,test_rmse_variance",
		"Tm,30.5,4,55.25,9",
		"logS,0.8,-0.01,1.2,0.04",
		"Tm,1,1,1,1",
	}, "\n"))

	st, err := LoadStatistics("NN", path)
	if err != nil {
		t.Fatalf("LoadStatistics failed: %v", err)
	}

	t.Run("Lookup", func(t *testing.T) {
		rec, ok := st.Lookup("Tm")
		if !ok {
			t.Fatal("Expected Tm to be present")
		}
		if rec.InterpMean != 30.5 || rec.ExtrapMean != 55.25 {
			t.Errorf("Unexpected means: %+v", rec)
		}
		if rec.InterpVariance != 4 || rec.ExtrapVariance != 9 {
			t.Errorf("Unexpected variances: %+v", rec)
		}
		if !rec.HasVariance {
			t.Error("Expected HasVariance for table with variance columns")
		}
		if rec.Model != "NN" {
			t.Errorf("Expected model NN, got %q", rec.Model)
		}
	})

	t.Run("FirstRowWins", func(t *testing.T) {
		targets := st.Targets()
		if len(targets) != 2 {
			t.Fatalf("Expected 2 targets, got %v", targets)
		}
		if targets[0] != "Tm" || targets[1] != "logS" {
			t.Errorf("Unexpected target order %v", targets)
		}
	})

	t.Run("NegativeVarianceClamped", func(t *testing.T) {
		rec, _ := st.Lookup("logS")
		if rec.InterpVariance != 0 {
			t.Errorf("Expected clamped variance 0, got %f", rec.InterpVariance)
		}
	})

	t.Run("MissingTarget", func(t *testing.T) {
		if _, ok := st.Lookup("Ebd"); ok {
			t.Error("Expected Ebd to be absent")
		}
	})
}

func TestLoadStatisticsWithoutVariance(t *testing.T) {
	path := writeFile(t, "sr.csv", "target,val_rmse_mean,test_rmse_mean\nEbd,120,180\n")

	st, err := LoadStatistics("SR", path)
	if err != nil {
		t.Fatalf("LoadStatistics failed: %v", err)
	}
	if st.HasVariance {
		t.Error("Expected table without variance columns to have HasVariance=false")
	}
	rec, ok := st.Lookup("Ebd")
	if !ok {
		t.Fatal("Expected Ebd to be present")
	}
	if rec.HasVariance || rec.InterpVariance != 0 {
		t.Errorf("Unexpected variance on record: %+v", rec)
	}
}

func TestDropVariance(t *testing.T) {
	table, err := ParseTable(strings.NewReader("target,val_rmse_mean,val_rmse_variance,test_rmse_mean,test_rmse_variance\nRI,1,2,3,4\n"))
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}
	st, err := NewStatisticsTable("SR", table)
	if err != nil {
		t.Fatalf("NewStatisticsTable failed: %v", err)
	}
	st.DropVariance()

	rec, _ := st.Lookup("RI")
	if rec.HasVariance || rec.InterpVariance != 0 || rec.ExtrapVariance != 0 {
		t.Errorf("Expected variance to be dropped, got %+v", rec)
	}
}

func TestMissingColumns(t *testing.T) {
	table, err := ParseTable(strings.NewReader("target,val_rmse_mean\nTm,1\n"))
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}
	_, err = NewStatisticsTable("LR", table)
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Expected ErrMissingColumn, got %v", err)
	}
}

func TestMalformedNumber(t *testing.T) {
	table, err := ParseTable(strings.NewReader("target,val_rmse_mean,test_rmse_mean\nTm,abc,1\n"))
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}
	if _, err := NewStatisticsTable("LR", table); err == nil {
		t.Error("Expected an error for a malformed number")
	}
}

func TestMissingFile(t *testing.T) {
	_, err := LoadStatistics("LR", filepath.Join(t.TempDir(), "absent.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestParseEpochs(t *testing.T) {
	table, err := ParseTable(strings.NewReader(strings.Join([]string{
		"target,epochs,fold,val_rmse,test_rmse",
		"Tm,10,0,50,60",
		"Tm,10,1,40,",
	}, "\n")))
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}

	rows, err := ParseEpochs(table)
	if err != nil {
		t.Fatalf("ParseEpochs failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[1].Fold != 1 || rows[1].ValRMSE != 40 {
		t.Errorf("Unexpected row: %+v", rows[1])
	}
	if !math.IsNaN(rows[1].TestRMSE) {
		t.Errorf("Expected empty cell to read as NaN, got %f", rows[1].TestRMSE)
	}
	if !math.IsNaN(rows[0].ValR2) {
		t.Errorf("Expected absent column to read as NaN, got %f", rows[0].ValR2)
	}
}

func TestParsePareto(t *testing.T) {
	table, err := ParseTable(strings.NewReader(strings.Join([]string{
		"Complexity,Loss,Equation,Range2_RMSE",
		"5,0.4,x0+x1,0.9",
		"1,2.5,x0,3.1",
		"3,1.0,x0*x1,1.7",
	}, "\n")))
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}

	rows, err := ParsePareto(table)
	if err != nil {
		t.Fatalf("ParsePareto failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	for i, want := range []float64{1, 3, 5} {
		if rows[i].Complexity != want {
			t.Errorf("Row %d: expected complexity %v, got %v", i, want, rows[i].Complexity)
		}
	}
	if rows[0].Range2RMSE != 3.1 {
		t.Errorf("Expected Range2_RMSE 3.1, got %v", rows[0].Range2RMSE)
	}
}

func TestRecordMaxMean(t *testing.T) {
	cases := []struct {
		rec  Record
		want float64
	}{
		{Record{InterpMean: 2, ExtrapMean: 5}, 5},
		{Record{InterpMean: 7, ExtrapMean: 5}, 7},
		{Record{InterpMean: math.NaN(), ExtrapMean: 3}, 3},
	}
	for _, tc := range cases {
		if got := tc.rec.MaxMean(); got != tc.want {
			t.Errorf("MaxMean(%+v) = %v, want %v", tc.rec, got, tc.want)
		}
	}
}
