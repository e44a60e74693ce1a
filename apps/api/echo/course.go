package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sabaq/backend/core/course"
	"github.com/sabaq/backend/core/user"
)

type courseApi struct {
	svc    *course.Service
	usrSvc *user.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service, usrSvc *user.Service) {
	api := courseApi{svc: svc, usrSvc: usrSvc}

	// public endpoints
	pg := g.Group("/public-courses")
	pg.GET("", api.query)
	pg.GET("/:course_id", api.retrieve)
	pg.GET("/:course_id/first-topic", api.previewTopics)

	// authed endpoints
	authed := []echo.MiddlewareFunc{jwt, ctxUserMiddleware(usrSvc)}

	mg := g.Group("/my-courses", authed...)
	mg.GET("", api.myCourses)
	mg.GET("/:course_id/topics", api.topics)

	tg := g.Group("/topics", authed...)
	tg.GET("/:topic_id", api.topicDetail)
	tg.POST("/:topic_id/submit-test", api.submitTest)

	g.GET("/curator/progress", api.curatorProgress, authed...)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.QueryCourses(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "course_id")
	if err != nil {
		return err
	}
	crs, err := api.svc.GetCourse(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) previewTopics(ctx echo.Context) error {
	id, err := pathID(ctx, "course_id")
	if err != nil {
		return err
	}
	views, err := api.svc.PreviewTopics(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "previewing topics")
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *courseApi) myCourses(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	courses, err := api.svc.MyCourses(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying enrolled courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) topics(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := pathID(ctx, "course_id")
	if err != nil {
		return course.ErrNotEnrolled
	}
	views, err := api.svc.CourseTopics(ctx.Request().Context(), usr, id)
	if err != nil {
		return errors.Wrap(err, "listing topics")
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *courseApi) topicDetail(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := pathID(ctx, "topic_id")
	if err != nil {
		return course.ErrTopicNotFound
	}
	detail, err := api.svc.TopicDetail(ctx.Request().Context(), usr, id)
	if err != nil {
		return errors.Wrap(err, "getting topic")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *courseApi) submitTest(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := pathID(ctx, "topic_id")
	if err != nil {
		return course.ErrTestNotFound
	}

	// an unreadable body grades as an empty submission
	var sub course.Submission
	if err = ctx.Bind(&sub); err != nil {
		sub = course.Submission{}
	}
	res, err := api.svc.SubmitTest(ctx.Request().Context(), usr, id, sub)
	if err != nil {
		return errors.Wrap(err, "submitting test")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *courseApi) curatorProgress(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	report, err := api.svc.CuratorProgress(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "reporting curator progress")
	}
	return ctx.JSON(http.StatusOK, report)
}
