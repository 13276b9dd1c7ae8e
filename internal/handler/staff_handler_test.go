package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/access"
	"github.com/schoolsite/portal-backend/internal/middleware"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/repository"
	"github.com/schoolsite/portal-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopAudit struct{}

func (nopAudit) Record(context.Context, uuid.UUID, model.AuditAction, string, any) {}

type memContent struct {
	items []model.ContentItem
}

func (m *memContent) List(_ context.Context, kind model.ContentKind, _ model.ContentFilter) ([]model.ContentItem, int, error) {
	var out []model.ContentItem
	for _, it := range m.items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out, len(out), nil
}

func (m *memContent) GetByID(_ context.Context, kind model.ContentKind, id int64) (*model.ContentItem, error) {
	for i := range m.items {
		if m.items[i].Kind == kind && m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memContent) Create(_ context.Context, kind model.ContentKind, req *model.ContentRequest, createdBy uuid.UUID) (*model.ContentItem, error) {
	it := model.ContentItem{ID: int64(len(m.items) + 1), Kind: kind, Title: req.Title, Content: req.Content, CreatedBy: &createdBy}
	m.items = append(m.items, it)
	return &it, nil
}

func (m *memContent) Update(ctx context.Context, kind model.ContentKind, id int64, req *model.ContentRequest) (*model.ContentItem, error) {
	it, err := m.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	it.Title = req.Title
	return it, nil
}

func (m *memContent) Delete(ctx context.Context, kind model.ContentKind, id int64) error {
	_, err := m.GetByID(ctx, kind, id)
	return err
}

type memPersonnel struct {
	list []model.Personnel
}

func (m *memPersonnel) List(context.Context, string) ([]model.Personnel, error) {
	return append([]model.Personnel(nil), m.list...), nil
}

func (m *memPersonnel) GetByID(_ context.Context, id int64) (*model.Personnel, error) {
	for i := range m.list {
		if m.list[i].ID == id {
			return &m.list[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPersonnel) Create(_ context.Context, req *model.PersonnelRequest) (*model.Personnel, error) {
	p := model.Personnel{ID: int64(len(m.list) + 1), FullName: req.FullName, Position: req.Position, Department: req.Department, SortOrder: req.SortOrder}
	m.list = append(m.list, p)
	return &p, nil
}

func (m *memPersonnel) Update(ctx context.Context, id int64, req *model.PersonnelRequest) (*model.Personnel, error) {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.FullName = req.FullName
	return p, nil
}

func (m *memPersonnel) Delete(ctx context.Context, id int64) error {
	_, err := m.GetByID(ctx, id)
	return err
}

type memAdmissions struct {
	apps []model.AdmissionApplication
}

func (m *memAdmissions) Create(_ context.Context, req *model.SubmitAdmissionRequest) (*model.AdmissionApplication, error) {
	a := model.AdmissionApplication{ID: int64(len(m.apps) + 1), StudentName: req.StudentName, Status: model.AdmissionPending}
	m.apps = append(m.apps, a)
	return &a, nil
}

func (m *memAdmissions) List(_ context.Context, status string, _, _ int) ([]model.AdmissionApplication, int, error) {
	var out []model.AdmissionApplication
	for _, a := range m.apps {
		if status == "" || string(a.Status) == status {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *memAdmissions) UpdateStatus(_ context.Context, id int64, status model.AdmissionStatus, _ uuid.UUID) (*model.AdmissionApplication, error) {
	for i := range m.apps {
		if m.apps[i].ID == id {
			m.apps[i].Status = status
			return &m.apps[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

type memProfiles struct {
	profiles map[uuid.UUID]model.Profile
}

func (m *memProfiles) GetProfile(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memProfiles) UpsertProfile(_ context.Context, p *model.Profile) error {
	m.profiles[p.UserID] = *p
	return nil
}

type staffFixture struct {
	content    *memContent
	personnel  *memPersonnel
	admissions *memAdmissions
	profiles   *memProfiles
}

// newStaffRouter mounts the public, staff and profile routes with the
// production permission gates.
func newStaffRouter(ac *access.AuthContext) (*gin.Engine, *staffFixture) {
	fx := &staffFixture{
		content:    &memContent{},
		personnel:  &memPersonnel{},
		admissions: &memAdmissions{},
		profiles:   &memProfiles{profiles: map[uuid.UUID]model.Profile{}},
	}
	log := zerolog.Nop()
	contentH := NewContentHandler(service.NewContentService(fx.content, nopAudit{}, log))
	personnelH := NewPersonnelHandler(service.NewPersonnelService(fx.personnel, nopAudit{}, log))
	admissionH := NewAdmissionHandler(service.NewAdmissionService(fx.admissions, nopAudit{}, log))
	profileH := NewProfileHandler(service.NewProfileService(fx.profiles, log))

	r := gin.New()
	public := r.Group("/public")
	{
		public.GET("/deeplink", contentH.DeepLink)
		public.GET("/personnel", personnelH.List)
		public.POST("/admissions", admissionH.Submit)
	}

	staff := r.Group("/staff", asPrincipal(ac))
	{
		personnel := staff.Group("/personnel", middleware.RequirePermission(model.PermissionManagePersonnel))
		personnel.POST("", personnelH.Create)

		admissions := staff.Group("/admissions", middleware.RequirePermission(model.PermissionManageAdmissions))
		admissions.GET("", admissionH.List)
		admissions.PATCH("/:id/status", admissionH.UpdateStatus)

		content := staff.Group("/:kind", middleware.RequireContentPermission())
		content.POST("", contentH.Create)
	}

	me := r.Group("/me", asPrincipal(ac))
	me.GET("/profile", profileH.Get)
	me.PUT("/profile", profileH.Update)

	return r, fx
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func principal(role model.Role, perms ...model.Permission) *access.AuthContext {
	return access.NewAuthContext(uuid.New(), string(role)+"@school.test", role, model.NewPermissionSet(perms...))
}

func TestPersonnelRoutes_RequireManagePersonnel(t *testing.T) {
	body := model.PersonnelRequest{FullName: "ครูมานี", Position: "ครู", Department: "วิทยาศาสตร์", SortOrder: 1}

	tests := []struct {
		name     string
		ac       *access.AuthContext
		wantCode int
	}{
		{name: "student without grant", ac: principal(model.RoleStudent), wantCode: http.StatusForbidden},
		{name: "teacher with another grant", ac: principal(model.RoleTeacher, model.PermissionManageNews), wantCode: http.StatusForbidden},
		{name: "guardian with grant", ac: principal(model.RoleGuardian, model.PermissionManagePersonnel), wantCode: http.StatusCreated},
		{name: "admin", ac: principal(model.RoleAdmin), wantCode: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fx := newStaffRouter(tt.ac)

			w := doJSON(r, http.MethodPost, "/staff/personnel", body)

			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode == http.StatusForbidden {
				assert.Equal(t, "PERMISSION_DENIED", decode(t, w).Error.Code)
				assert.Empty(t, fx.personnel.list)
				return
			}
			assert.Len(t, fx.personnel.list, 1)
		})
	}
}

func TestPublicPersonnel_GroupedOrder(t *testing.T) {
	r, fx := newStaffRouter(nil)
	fx.personnel.list = []model.Personnel{
		{ID: 1, Department: "วิทยาศาสตร์", SortOrder: 2},
		{ID: 2, Department: "บริหาร", SortOrder: 1},
		{ID: 3, Department: "วิทยาศาสตร์", SortOrder: 1},
	}

	w := doJSON(r, http.MethodGet, "/public/personnel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []model.Personnel
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	require.Len(t, list, 3)
	assert.Equal(t, []int64{2, 3, 1}, []int64{list[0].ID, list[1].ID, list[2].ID})
}

func TestAdmissionRoutes(t *testing.T) {
	t.Run("public submit starts pending", func(t *testing.T) {
		r, fx := newStaffRouter(nil)
		w := doJSON(r, http.MethodPost, "/public/admissions", model.SubmitAdmissionRequest{
			StudentName: "ด.ช.ก้อง", GradeApplied: "ม.1", GuardianName: "นายกล้า", Phone: "0812345678",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.Len(t, fx.admissions.apps, 1)
		assert.Equal(t, model.AdmissionPending, fx.admissions.apps[0].Status)
	})

	t.Run("public submit validates payload", func(t *testing.T) {
		r, fx := newStaffRouter(nil)
		w := doJSON(r, http.MethodPost, "/public/admissions", map[string]string{"student_name": "ก"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
		assert.Empty(t, fx.admissions.apps)
	})

	t.Run("review needs manage_admissions", func(t *testing.T) {
		r, fx := newStaffRouter(principal(model.RoleTeacher, model.PermissionManagePersonnel))
		fx.admissions.apps = []model.AdmissionApplication{{ID: 1, Status: model.AdmissionPending}}

		w := doJSON(r, http.MethodPatch, "/staff/admissions/1/status", map[string]string{"status": "accepted"})
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, model.AdmissionPending, fx.admissions.apps[0].Status)

		w = doJSON(r, http.MethodGet, "/staff/admissions", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("review updates status", func(t *testing.T) {
		r, fx := newStaffRouter(principal(model.RoleTeacher, model.PermissionManageAdmissions))
		fx.admissions.apps = []model.AdmissionApplication{{ID: 1, Status: model.AdmissionPending}}

		w := doJSON(r, http.MethodPatch, "/staff/admissions/1/status", map[string]string{"status": "accepted"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, model.AdmissionAccepted, fx.admissions.apps[0].Status)

		w = doJSON(r, http.MethodPatch, "/staff/admissions/2/status", map[string]string{"status": "rejected"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		r, fx := newStaffRouter(principal(model.RoleAdmin))
		fx.admissions.apps = []model.AdmissionApplication{{ID: 1, Status: model.AdmissionPending}}

		w := doJSON(r, http.MethodPatch, "/staff/admissions/1/status", map[string]string{"status": "waitlisted"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
		assert.Equal(t, model.AdmissionPending, fx.admissions.apps[0].Status)

		w = doJSON(r, http.MethodGet, "/staff/admissions?status=archived", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
	})
}

func TestContentRoutes_KindPermissionAndDeepLink(t *testing.T) {
	r, fx := newStaffRouter(principal(model.RoleTeacher, model.PermissionManageNews))
	item := model.ContentRequest{Title: "ประกาศวันหยุด", Content: "...", AuthorName: "ฝ่ายบริหาร", Category: "ประกาศ"}

	w := doJSON(r, http.MethodPost, "/staff/news", item)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/staff/activities", item)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/staff/events", item)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Len(t, fx.content.items, 1)

	w = doJSON(r, http.MethodGet, "/public/deeplink?hash=%23news-detail-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Item model.ContentItem `json:"item"`
		Hash string            `json:"hash"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, "ประกาศวันหยุด", data.Item.Title)
	assert.Equal(t, "#news-detail-1", data.Hash)

	w = doJSON(r, http.MethodGet, "/public/deeplink?hash=%23news-detail-abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileRoutes_UpdateThenGet(t *testing.T) {
	ac := principal(model.RoleStudent)
	r, _ := newStaffRouter(ac)

	w := doJSON(r, http.MethodGet, "/me/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPut, "/me/profile", map[string]string{"full_name": "ด.ญ.ใบเตย"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, "/me/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p model.Profile
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &p))
	assert.Equal(t, ac.UserID, p.UserID)
	assert.Equal(t, "ด.ญ.ใบเตย", p.FullName)

	w = doJSON(r, http.MethodPut, "/me/profile", map[string]string{"full_name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
