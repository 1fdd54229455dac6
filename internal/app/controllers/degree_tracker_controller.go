package controllers

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/app/models/dto"
	"github.com/yigit/degreetracker/internal/middleware"
)

// DegreeTrackerPath is where the degree tracker page lives
const DegreeTrackerPath = "/student/degree-tracker"

// DegreeTracker is the service behind the degree tracker page
type DegreeTracker interface {
	Load(ctx context.Context, identity *models.Identity) (*models.DegreeTrackerView, error)
	SaveChanges(ctx context.Context, identity *models.Identity, entries []dto.CourseEntry) error
	RemoveCourse(ctx context.Context, identity *models.Identity, req dto.RemoveCourseRequest) error
}

// DegreeTrackerController serves the degree tracker page, its form actions and its JSON view
type DegreeTrackerController struct {
	tracker DegreeTracker
	logger  zerolog.Logger
}

// NewDegreeTrackerController creates a new DegreeTrackerController
func NewDegreeTrackerController(tracker DegreeTracker, logger zerolog.Logger) *DegreeTrackerController {
	return &DegreeTrackerController{
		tracker: tracker,
		logger:  logger,
	}
}

type courseSection struct {
	Title   string
	Courses []models.CourseWithPrerequisites
}

// carriedRecord is a recorded course shown in neither section. It is posted back with the save
// form so saving does not drop it.
type carriedRecord struct {
	CourseID      int64
	Grade         string
	RequirementID string
}

type degreeTrackerPage struct {
	View     *models.DegreeTrackerView
	Sections []courseSection
	Carried  []carriedRecord
	Message  string
}

type errorPage struct {
	Status  int
	Message string
}

// Page renders the degree tracker
func (c *DegreeTrackerController) Page(ctx *gin.Context) {
	c.renderPage(ctx, http.StatusOK, "")
}

// renderPage loads the view and renders it with an optional message; load failures render the error page
func (c *DegreeTrackerController) renderPage(ctx *gin.Context, status int, message string) {
	view, err := c.tracker.Load(ctx.Request.Context(), middleware.GetIdentity(ctx))
	if err != nil {
		RenderError(ctx, err)
		return
	}

	ctx.HTML(status, "degree_tracker.html", newDegreeTrackerPage(view, message))
}

// newDegreeTrackerPage lays the view out so every course has exactly one form row: electives
// already listed as program courses are left out, and records outside both sections are carried.
func newDegreeTrackerPage(view *models.DegreeTrackerView, message string) degreeTrackerPage {
	shown := make(map[int64]bool, len(view.ProgramCourses)+len(view.ElectiveCourses))
	program := uniqueCourses(view.ProgramCourses, shown)
	electives := uniqueCourses(view.ElectiveCourses, shown)

	var carried []carriedRecord
	for courseID, record := range view.StudentCourses {
		if shown[courseID] {
			continue
		}
		c := carriedRecord{CourseID: courseID, Grade: record.Grade}
		if record.RequirementID != nil {
			c.RequirementID = *record.RequirementID
		}
		carried = append(carried, c)
	}
	sort.Slice(carried, func(i, j int) bool { return carried[i].CourseID < carried[j].CourseID })

	return degreeTrackerPage{
		View: view,
		Sections: []courseSection{
			{Title: "Program courses", Courses: program},
			{Title: "Elective courses", Courses: electives},
		},
		Carried: carried,
		Message: message,
	}
}

func uniqueCourses(courses []models.CourseWithPrerequisites, shown map[int64]bool) []models.CourseWithPrerequisites {
	out := make([]models.CourseWithPrerequisites, 0, len(courses))
	for _, c := range courses {
		if shown[c.ID] {
			continue
		}
		shown[c.ID] = true
		out = append(out, c)
	}
	return out
}

// GetDegreeTracker returns the degree tracker view as JSON
// @Summary Get degree tracker
// @Description Returns the caller's program, required and elective courses, recorded grades and requirements
// @Tags degree-tracker
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.DegreeTrackerView} "Degree tracker view"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Student or program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /degree-tracker [get]
func (c *DegreeTrackerController) GetDegreeTracker(ctx *gin.Context) {
	view, err := c.tracker.Load(ctx.Request.Context(), middleware.GetIdentity(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(view, ""))
}

// SaveChanges handles the saveChanges form action
func (c *DegreeTrackerController) SaveChanges(ctx *gin.Context) {
	if err := ctx.Request.ParseForm(); err != nil {
		c.respondAction(ctx, errBadForm)
		return
	}

	entries, err := dto.ParseCourseEntries(ctx.Request.PostForm)
	if err != nil {
		c.respondAction(ctx, err)
		return
	}

	err = c.tracker.SaveChanges(ctx.Request.Context(), middleware.GetIdentity(ctx), entries)
	c.respondAction(ctx, err)
}

// RemoveCourse handles the removeCourse form action
func (c *DegreeTrackerController) RemoveCourse(ctx *gin.Context) {
	var req dto.RemoveCourseRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.respondAction(ctx, errBadForm)
		return
	}

	err := c.tracker.RemoveCourse(ctx.Request.Context(), middleware.GetIdentity(ctx), req)
	c.respondAction(ctx, err)
}

// respondAction answers a form action. Browsers are redirected back to the page on success and
// see the page again with the message on failure; other clients get an ActionResult.
func (c *DegreeTrackerController) respondAction(ctx *gin.Context, err error) {
	if err == nil {
		if middleware.IsHTMLRequest(ctx) {
			ctx.Redirect(http.StatusSeeOther, DegreeTrackerPath)
			return
		}
		ctx.JSON(http.StatusOK, dto.ActionSucceeded())
		return
	}

	status, detail := middleware.ErrorStatus(err)
	c.logger.Warn().Err(err).Int("status", status).Str("path", ctx.Request.URL.Path).Msg("Degree tracker action failed")

	if middleware.IsHTMLRequest(ctx) {
		c.renderPage(ctx, status, detail.Message)
		return
	}
	ctx.JSON(status, dto.ActionFailed(status, detail.Message))
}

// DenyPage answers a page request rejected by the role check
func (c *DegreeTrackerController) DenyPage(ctx *gin.Context, err error) {
	RenderError(ctx, err)
}

// DenyAction answers a form action rejected by the role check
func (c *DegreeTrackerController) DenyAction(ctx *gin.Context, err error) {
	status, detail := middleware.ErrorStatus(err)
	if middleware.IsHTMLRequest(ctx) {
		RenderError(ctx, err)
		return
	}
	ctx.AbortWithStatusJSON(status, dto.ActionFailed(status, detail.Message))
}

// RenderError renders the error page for err with its mapped status
func RenderError(ctx *gin.Context, err error) {
	status, detail := middleware.ErrorStatus(err)
	ctx.HTML(status, "error.html", errorPage{Status: status, Message: detail.Message})
	ctx.Abort()
}
