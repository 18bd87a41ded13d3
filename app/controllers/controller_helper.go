package controllers

import "errors"

var errMissingReference = errors.New("payload carries no transaction reference")
