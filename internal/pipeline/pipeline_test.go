package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/entity"
	"github.com/joseph-ayodele/vetting-tracker/internal/llm"
	"github.com/joseph-ayodele/vetting-tracker/internal/metrics"
	"github.com/joseph-ayodele/vetting-tracker/internal/ocr"
	"github.com/joseph-ayodele/vetting-tracker/internal/repository"
	"github.com/joseph-ayodele/vetting-tracker/internal/repository/repotest"
)

type ocrFunc func(ctx context.Context, payload string) (string, error)

func (f ocrFunc) ExtractText(ctx context.Context, payload string) (string, error) { return f(ctx, payload) }

type stubExtractor struct {
	out  llm.FlowExtraction
	err  error
	reqs []llm.ExtractRequest
}

func (s *stubExtractor) Extract(_ context.Context, req llm.ExtractRequest) (llm.FlowExtraction, []byte, error) {
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return llm.FlowExtraction{}, nil, s.err
	}
	return s.out, []byte("{}"), nil
}

type memArchiver struct {
	keys []string
	err  error
}

func (m *memArchiver) Put(_ context.Context, kind constants.DocumentKind, id uuid.UUID, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	key := string(kind) + "/" + id.String() + ".pdf"
	m.keys = append(m.keys, key)
	return key, nil
}

type failingFlows struct {
	repository.FlowRepository
}

func (failingFlows) CreateWithItems(context.Context, *entity.FlowHeader, []*entity.FlowItem) error {
	return errors.New("insert flow items: constraint failed")
}

var pdfPayload = base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 vetting sheet"))

func staticOCR(text string) ocr.Extractor {
	return ocrFunc(func(context.Context, string) (string, error) { return text, nil })
}

type fixture struct {
	flows     repository.FlowRepository
	approvals repository.ApprovalRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := repotest.NewSQLite(t)
	return fixture{
		flows:     repository.NewFlowRepository(db.Driver, repotest.Logger()),
		approvals: repository.NewApprovalRepository(db.Driver, repotest.Logger()),
	}
}

func financeExtraction() llm.FlowExtraction {
	return llm.FlowExtraction{
		PlanHead: "CE/123/2024",
		WorkName: "Platform extension at JU",
		RightSideFlow: []llm.FlowEntry{
			{Designation: "SR. DFM/JU", Date: "02/01/2024", Time: "10:00:00"},
			{Designation: "SE/JU", Date: "03/01/2024", Time: "11:00:00"},
			{Designation: "SR. DFM/JU", Date: "02/01/2024", Time: "10:00:00"},
			{Designation: "CCM/NWR", Date: "not a date", Time: ""},
		},
	}
}

func TestBuildFlowMetadata(t *testing.T) {
	rows := BuildFlowMetadata(financeExtraction().RightSideFlow)
	require.Len(t, rows, 4)

	assert.Equal(t, FlowRow{
		SequenceNo:           1,
		Designation:          "SR. DFM/JU",
		DesignationCanonical: "SR. DFM",
		Department:           "JU",
		DesignationKey:       "SRDFM",
		IsMatchedTarget:      true,
		Date:                 "02/01/2024",
		Time:                 "10:00:00",
		ActionDate:           "2024-01-02",
		ActionTime:           "10:00:00",
	}, rows[0])

	assert.False(t, rows[1].IsMatchedTarget)
	assert.Equal(t, constants.DropReasonNotTarget, rows[1].DropReason)
	assert.Equal(t, 4, rows[3].SequenceNo)
	assert.Equal(t, "CCM", rows[3].DesignationKey)
	assert.Equal(t, "", rows[3].ActionDate)

	assert.Equal(t, 3, MatchedRows(rows))
	assert.Equal(t, []DateTimeEntry{
		{Designation: "SR. DFM/JU", Date: "02/01/2024", Time: "10:00:00"},
		{Designation: "CCM/NWR", Date: "not a date"},
	}, FilteredDateTime(rows))
}

func TestHeaderApprovalDate(t *testing.T) {
	assert.Equal(t, "30.10.2025", HeaderApprovalDate("North Western Railway\nHeadquarters Office\nJaipur\nDate-30.10.2025\nSub: vetting"))
	assert.Equal(t, "05/01/2024", HeaderApprovalDate("Ref no 12\nDate : 05/01/2024"))
	assert.Equal(t, "", HeaderApprovalDate("no dates here"))
	assert.Equal(t, "", HeaderApprovalDate("   "))
}

func TestResolveApprovalDateTime(t *testing.T) {
	x := llm.FlowExtraction{
		GMApprovalDate: "09/01/2024",
		RightSideFlow: []llm.FlowEntry{
			{Designation: "CCM/NWR", Date: "08/01/2024", Time: "09:00"},
			{Designation: "Gm/NWR", Date: "10.01.2024", Time: "2:30 PM"},
		},
	}
	d, c := ResolveApprovalDateTime(x, "Date-01.01.2020")
	assert.Equal(t, "10.01.2024", d)
	assert.Equal(t, "2:30 PM", c)

	x.RightSideFlow[1].Date = ""
	d, c = ResolveApprovalDateTime(x, "Date-01.01.2020")
	assert.Equal(t, "09/01/2024", d)
	assert.Equal(t, "2:30 PM", c)

	x.GMApprovalDate = ""
	d, _ = ResolveApprovalDateTime(x, "Date-01.01.2020")
	assert.Equal(t, "01.01.2020", d)
}

func TestProcessFinance_SavesCase(t *testing.T) {
	f := newFixture(t)
	ext := &stubExtractor{out: financeExtraction()}
	arch := &memArchiver{}
	m := metrics.New(nil)
	p := NewProcessor(staticOCR("PLAN HEAD CE/123/2024\r\n\r\n\r\nSR. DFM/JU   02/01/2024"), ext, f.flows, f.approvals, repotest.Logger(),
		WithArchiver(arch), WithMetrics(m))

	res, err := p.ProcessFinance(context.Background(), "Read the sheet", "data:application/pdf;base64,"+pdfPayload)
	require.NoError(t, err)

	assert.NotEmpty(t, res.TraceID)
	assert.Equal(t, "PLAN HEAD CE/123/2024\n\nSR. DFM/JU 02/01/2024", res.RawText)
	assert.True(t, res.DBWrite.Saved)
	assert.Equal(t, 4, res.DBWrite.TotalFlowRows)
	assert.Equal(t, 3, res.DBWrite.MatchedRows)
	assert.Len(t, res.FilteredDateTime, 2)

	require.Len(t, ext.reqs, 1)
	assert.Equal(t, constants.FinanceFlow, ext.reqs[0].Kind)
	assert.Equal(t, "Read the sheet", ext.reqs[0].Prompt)

	headers, err := f.flows.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, headers, 1)
	assert.Equal(t, res.DBWrite.CaseUUID, headers[0].ID.String())
	assert.Equal(t, "CE/123/2024", headers[0].PlanheadString())
	require.NotNil(t, headers[0].SourceObject)
	assert.Equal(t, "finance/"+headers[0].ID.String()+".pdf", *headers[0].SourceObject)

	items, err := f.flows.ListItems(context.Background(), headers[0].ID)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "SR. DFM", *items[0].Designation)
	assert.Equal(t, "JU", *items[0].Department)
	assert.Equal(t, "2024-01-02", *items[0].ActionDate)
	assert.Nil(t, items[3].ActionDate)
}

func TestProcessFinance_ArchiveFailureDoesNotBlockSave(t *testing.T) {
	f := newFixture(t)
	p := NewProcessor(staticOCR("text"), &stubExtractor{out: financeExtraction()}, f.flows, f.approvals, repotest.Logger(),
		WithArchiver(&memArchiver{err: errors.New("bucket missing")}))

	res, err := p.ProcessFinance(context.Background(), "", pdfPayload)
	require.NoError(t, err)
	assert.True(t, res.DBWrite.Saved)

	headers, err := f.flows.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, headers, 1)
	assert.Nil(t, headers[0].SourceObject)
}

func TestProcessFinance_SaveFailureIsReported(t *testing.T) {
	f := newFixture(t)
	p := NewProcessor(staticOCR("text"), &stubExtractor{out: financeExtraction()}, failingFlows{}, f.approvals, repotest.Logger())

	res, err := p.ProcessFinance(context.Background(), "", pdfPayload)
	require.NoError(t, err)
	assert.False(t, res.DBWrite.Saved)
	assert.Contains(t, res.DBWrite.Error, "constraint failed")
	assert.Empty(t, res.DBWrite.CaseUUID)
	assert.Len(t, res.RightSideFlow, 4)
}

func TestProcess_OCRFailures(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		ocr     ocr.Extractor
		message string
	}{
		{"empty payload", "  ", staticOCR("unused"), msgEmptyPayload},
		{"data url without body", "data:application/pdf;base64", staticOCR("unused"), msgEmptyPayload},
		{"empty text", pdfPayload, ocrFunc(func(context.Context, string) (string, error) { return "", ocr.ErrEmptyText }), msgEmptyText},
		{"transport", pdfPayload, ocrFunc(func(context.Context, string) (string, error) {
			return "", &ocr.StatusError{StatusCode: http.StatusBadGateway, Body: "upstream down"}
		}), msgOCRTransport},
		{"sentinel", pdfPayload, staticOCR("OCR processing failed: image exceeds limit"), msgRejectedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ext := &stubExtractor{out: financeExtraction()}
			p := NewProcessor(tt.ocr, ext, f.flows, f.approvals, repotest.Logger())

			_, err := p.ProcessFinance(context.Background(), "prompt", tt.payload)
			xe, ok := AsExtractionError(err)
			require.True(t, ok, "%v", err)
			assert.Equal(t, CodeFinanceOCRFailed, xe.Code)
			assert.Equal(t, http.StatusUnprocessableEntity, xe.Status)
			assert.Equal(t, tt.message, xe.Message)

			_, err = p.ProcessApproval(context.Background(), tt.payload)
			xe, ok = AsExtractionError(err)
			require.True(t, ok, "%v", err)
			assert.Equal(t, CodeApprovalOCRFailed, xe.Code)
			assert.Equal(t, tt.message, xe.Message)

			assert.Empty(t, ext.reqs)
		})
	}
}

func TestProcess_LLMFailure(t *testing.T) {
	f := newFixture(t)
	p := NewProcessor(staticOCR("text"), &stubExtractor{err: errors.New("openai status 500")}, f.flows, f.approvals, repotest.Logger())

	_, err := p.ProcessApproval(context.Background(), pdfPayload)
	xe, ok := AsExtractionError(err)
	require.True(t, ok)
	assert.Equal(t, CodeLLMExtractionFailed, xe.Code)
	assert.Equal(t, http.StatusBadGateway, xe.Status)
	assert.Contains(t, xe.Details, "openai status 500")

	n, err := f.flows.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcessApproval_SavesRecord(t *testing.T) {
	f := newFixture(t)
	ext := &stubExtractor{out: llm.FlowExtraction{
		PlanHead: "CE/123/2024",
		RightSideFlow: []llm.FlowEntry{
			{Designation: "PCE/NWR", Date: "08/01/2024", Time: "09:00"},
			{Designation: "GM/NWR", Date: "10.01.2024", Time: "2:30 PM"},
		},
	}}
	p := NewProcessor(staticOCR("Headquarters Office\nJaipur\nDate-30.10.2025"), ext, f.flows, f.approvals, repotest.Logger())

	res, err := p.ProcessApproval(context.Background(), pdfPayload)
	require.NoError(t, err)
	assert.True(t, res.DBWrite.Saved)
	require.NotNil(t, res.DBWrite.ApprovalDate)
	assert.Equal(t, "2024-01-10", *res.DBWrite.ApprovalDate)
	require.NotNil(t, res.DBWrite.ApprovalTime)
	assert.Equal(t, "14:30:00", *res.DBWrite.ApprovalTime)
	assert.Equal(t, constants.Approval, ext.reqs[0].Kind)

	recs, err := f.approvals.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, res.DBWrite.CaseUUID, recs[0].ID.String())
	assert.Equal(t, "CE/123/2024", recs[0].PlanheadString())
	assert.Nil(t, recs[0].Workname)
	assert.Equal(t, "2024-01-10", recs[0].ApprovalDateString())
	require.NotNil(t, recs[0].RawText)
	assert.Contains(t, *recs[0].RawText, "Headquarters Office")
}

func TestProcessApproval_HeaderDateFallback(t *testing.T) {
	f := newFixture(t)
	ext := &stubExtractor{out: llm.FlowExtraction{PlanHead: "CE/9/2023"}}
	p := NewProcessor(staticOCR("Headquarters Office\nJaipur\nDate-30.10.2025"), ext, f.flows, f.approvals, repotest.Logger())

	res, err := p.ProcessApproval(context.Background(), pdfPayload)
	require.NoError(t, err)
	require.NotNil(t, res.DBWrite.ApprovalDate)
	assert.Equal(t, "2025-10-30", *res.DBWrite.ApprovalDate)
	assert.Nil(t, res.DBWrite.ApprovalTime)
}

func TestProcessFile(t *testing.T) {
	f := newFixture(t)
	var got string
	o := ocrFunc(func(_ context.Context, payload string) (string, error) {
		got = payload
		return "text", nil
	})
	ext := &stubExtractor{out: financeExtraction()}
	p := NewProcessor(o, ext, f.flows, f.approvals, repotest.Logger(), WithFinancePrompt("Configured prompt"))

	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.PDF")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	require.NoError(t, p.ProcessFile(context.Background(), path, constants.FinanceFlow))
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")), got)
	assert.Equal(t, "Configured prompt", ext.reqs[0].Prompt)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	assert.Error(t, p.ProcessFile(context.Background(), filepath.Join(dir, "notes.txt"), constants.FinanceFlow))
	assert.Error(t, p.ProcessFile(context.Background(), path, constants.DocumentKind("receipt")))
	assert.Error(t, p.ProcessFile(context.Background(), filepath.Join(dir, "missing.pdf"), constants.Approval))

	failing := NewProcessor(o, ext, failingFlows{}, f.approvals, repotest.Logger())
	err := failing.ProcessFile(context.Background(), path, constants.FinanceFlow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save flow")
}

type recordingProcessor struct {
	mu    sync.Mutex
	paths []string
	fail  map[string]bool
}

func (r *recordingProcessor) ProcessFile(_ context.Context, path string, _ constants.DocumentKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, filepath.Base(path))
	if r.fail[filepath.Base(path)] {
		return errors.New("boom")
	}
	return nil
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.pdf", ".hidden.pdf", "notes.txt", "sub/b.png", ".git/c.pdf"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	}

	proc := &recordingProcessor{fail: map[string]bool{"b.png": true}}
	results, stats, err := IngestDirectory(context.Background(), proc, root, constants.FinanceFlow, nil)
	require.NoError(t, err)

	sort.Strings(proc.paths)
	assert.Equal(t, []string{"a.pdf", "b.png"}, proc.paths)
	assert.Equal(t, DirStats{Scanned: 3, Matched: 2, Succeeded: 1, Failed: 1}, stats)
	assert.Len(t, results, 2)

	_, _, err = IngestDirectory(context.Background(), proc, " ", constants.FinanceFlow, nil)
	assert.Error(t, err)

	proc = &recordingProcessor{}
	_, stats, err = IngestDirectory(context.Background(), proc, root, constants.Approval, []string{".PNG"})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), stats.Matched)
}
