package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Nomor HP: 8-11 digit. Versi lama pernah mewajibkan tepat 11 digit; yang dipakai aturan 8-11.
var phonePattern = regexp.MustCompile(`^[0-9]{8,11}$`)

var fieldMessages = map[string]string{
	"volume_id":    "请选择要认领的卷",
	"name":         "请填写姓名",
	"phone":        "请输入8-11位数字的联系电话",
	"planned_days": "计划天数需在1-365天之间",
	"reading_url":  "阅读链接过长",
	"remarks":      "备注不能超过500字",
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	// pakai nama json supaya key error sama dengan field form
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func toValidationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &ValidationError{Fields: map[string]string{"body": "提交内容无效"}}
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Tag()
		}
		fields[fe.Field()] = msg
	}
	return &ValidationError{Fields: fields}
}
