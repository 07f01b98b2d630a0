package options

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/webcask/webcask/internal/errors"
)

// optionsValidator coordinates validation across all option domains.
// Checks run in dependency order; the first failure wins.
type optionsValidator struct {
	raw  Raw
	opts *Options
}

func (v *optionsValidator) validate() error {
	if err := v.validateTarget(); err != nil {
		return err
	}
	if err := v.validatePlatform(); err != nil {
		return err
	}
	if err := v.validateDimensions(); err != nil {
		return err
	}
	if err := v.validateName(); err != nil {
		return err
	}
	if err := v.validateIcon(); err != nil {
		return err
	}
	if err := v.validateInject(); err != nil {
		return err
	}
	if err := v.validateProxy(); err != nil {
		return err
	}
	if err := v.validateTemplate(); err != nil {
		return err
	}
	return nil
}

// validateTarget classifies the positional target: absolute http(s) URL or
// existing local file. Anything else is rejected before filesystem work starts.
func (v *optionsValidator) validateTarget() error {
	target := strings.TrimSpace(v.raw.Target)
	if target == "" {
		return errors.Validation("target is required: a http(s) URL or a local HTML file")
	}

	if isHTTPURL(target) {
		v.opts.Target = target
		v.opts.TargetKind = TargetURL
		return nil
	}

	if fileExists(target) {
		abs, err := filepath.Abs(target)
		if err != nil {
			return errors.Wrap(err, errors.CategoryValidation, errors.SeverityWarning, "target path cannot be resolved")
		}
		v.opts.Target = target
		v.opts.TargetKind = TargetFile
		v.opts.TargetPath = abs
		return nil
	}

	return errors.Validationf("target %q is neither an absolute http(s) URL nor an existing file", target)
}

func (v *optionsValidator) validatePlatform() error {
	if v.opts.Platform == "" {
		return errors.Validationf("unsupported platform %q (allowed: macos|windows|linux)", v.raw.Platform)
	}
	return nil
}

func (v *optionsValidator) validateDimensions() error {
	if v.opts.Width < minDimension || v.opts.Width > maxDimension {
		return errors.Validationf("width %d out of range [%d, %d]", v.opts.Width, minDimension, maxDimension)
	}
	if v.opts.Height < minDimension || v.opts.Height > maxDimension {
		return errors.Validationf("height %d out of range [%d, %d]", v.opts.Height, minDimension, maxDimension)
	}
	return nil
}

// validateName only checks explicitly supplied names; derived names are
// sanitized at derivation time.
func (v *optionsValidator) validateName() error {
	name := strings.TrimSpace(v.opts.Name)
	if v.raw.Name != "" && name == "" {
		return errors.Validation("name must not be blank")
	}
	if strings.ContainsAny(name, `/\`) {
		return errors.Validationf("name %q must not contain path separators", name)
	}
	v.opts.Name = name
	return nil
}

func (v *optionsValidator) validateIcon() error {
	icon := strings.TrimSpace(v.raw.Icon)
	if icon == "" {
		return nil
	}
	if isHTTPURL(icon) {
		v.opts.Icon = icon
		return nil
	}
	if !fileExists(icon) {
		return errors.Validationf("icon file %q does not exist", icon)
	}
	abs, err := filepath.Abs(icon)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, errors.SeverityWarning, "icon path cannot be resolved")
	}
	v.opts.Icon = abs
	return nil
}

// validateInject requires every injection file to exist now. Nonexistence is
// a hard failure, not deferred to staging.
func (v *optionsValidator) validateInject() error {
	for _, p := range v.raw.Inject {
		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".js" && ext != ".css" {
			return errors.Validationf("inject file %q must be a .js or .css file", p)
		}
		if !fileExists(p) {
			return errors.Validationf("inject file %q does not exist", p)
		}
	}
	v.opts.Inject = append([]string(nil), v.raw.Inject...)
	return nil
}

func (v *optionsValidator) validateProxy() error {
	proxy := strings.TrimSpace(v.raw.ProxyURL)
	if proxy == "" {
		return nil
	}
	u, err := url.Parse(proxy)
	if err != nil || u.Host == "" {
		return errors.Validationf("proxy url %q is not a valid URL", proxy)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return errors.Validationf("proxy url scheme %q not supported (allowed: http|https|socks5)", u.Scheme)
	}
	v.opts.ProxyURL = proxy
	return nil
}

// validateTemplate accepts an empty value (embedded scaffold), an existing
// directory, or a git URL. Clone errors surface later, at staging time.
func (v *optionsValidator) validateTemplate() error {
	tpl := strings.TrimSpace(v.raw.Template)
	if tpl == "" {
		return nil
	}
	if looksLikeGitURL(tpl) {
		v.opts.Template = tpl
		return nil
	}
	info, err := os.Stat(tpl)
	if err != nil || !info.IsDir() {
		return errors.Validationf("template %q is neither an existing directory nor a git URL", tpl)
	}
	abs, err := filepath.Abs(tpl)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, errors.SeverityWarning, "template path cannot be resolved")
	}
	v.opts.Template = abs
	return nil
}

func looksLikeGitURL(s string) bool {
	if strings.HasSuffix(s, ".git") {
		return true
	}
	if strings.HasPrefix(s, "git@") || strings.HasPrefix(s, "ssh://") {
		return true
	}
	return isHTTPURL(s)
}
