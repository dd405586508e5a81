package api

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"hiring-pipeline/internal/resume"
)

// ResumeUploadHandler parses an uploaded resume and scores it
// @Summary Upload and assess resume
// @Description Upload a resume (PDF/DOCX/TXT); its text is scored by the configured LLM for the three assessment types. Provider failures produce degraded assessments listed in warnings.
// @Tags candidates
// @Accept multipart/form-data
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param id path string true "Candidate ID"
// @Param file formData file true "Resume file"
// @Success 200 {object} response
// @Failure 400 {object} response
// @Failure 404 {object} response
// @Router /candidates/{id}/resume [post]
func (a *API) ResumeUploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if a.parser == nil {
		http.Error(w, "resume uploads are disabled", http.StatusServiceUnavailable)
		return
	}

	startTime := time.Now()
	tenant := tenantFrom(r.Context())
	candidateID := r.PathValue("id")

	// Make sure the candidate exists before storing anything
	c, err := a.svc.Candidate(r.Context(), tenant, candidateID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	req, err := a.svc.Requisition(r.Context(), tenant, c.RequisitionID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(resume.DefaultMaxBytes); err != nil {
		a.badRequest(w, "file too large or invalid (max 10MB)")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.badRequest(w, "no file uploaded")
		return
	}
	defer file.Close()

	doc, err := a.parser.Parse(header.Filename, file)
	switch {
	case errors.Is(err, resume.ErrUnsupportedType):
		a.badRequest(w, "invalid file type (supported: PDF, DOCX, DOC, RTF, ODT, TXT)")
		return
	case errors.Is(err, resume.ErrTooLarge):
		a.badRequest(w, "file too large (max 10MB)")
		return
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	res, err := a.svc.AssessResume(r.Context(), tenant, candidateID, doc.Text)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.queueTriggers(tenant, res.Triggers)
	found, missing := resume.MatchSkills(doc.Text, req.RequiredSkills)

	a.log.Info("resume assessed",
		zap.String("tenant_id", tenant),
		zap.String("candidate_id", candidateID),
		zap.String("file", doc.Filename),
		zap.Int("text_bytes", len(doc.Text)),
		zap.Duration("took", time.Since(startTime)),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"file": map[string]any{
			"filename":  doc.Filename,
			"file_type": doc.FileType,
			"size":      doc.Size,
		},
		"required_skills": map[string]any{
			"found":   found,
			"missing": missing,
		},
		"result": res,
	})
}
