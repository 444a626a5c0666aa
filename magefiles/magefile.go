//go:build mage

package main

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const target = "neo-crs"

var Default = Build

var Aliases = map[string]any{
	"neo-crs":      Build,
	"package":      Package,
	"cleanpackage": CleanPackage,
	"buildversion": BuildVersion,
}

var vLastVersion string
var vLastCommit string
var vIsNightly bool
var vBuildVersion string

func BuildVersion() {
	mg.Deps(GetVersion)
	fmt.Println(vBuildVersion)
}

func Build() error {
	mg.Deps(GetVersion, CheckTmp)
	return BuildX(runtime.GOOS, runtime.GOARCH)
}

// BuildX cross-compiles, the result is ./tmp/neo-crs[.exe] or
// ./tmp/<os>-<arch>/neo-crs[.exe] for a foreign platform.
func BuildX(targetOS string, targetArch string) error {
	mg.Deps(GetVersion, CheckTmp)
	fmt.Println("Build", target, vBuildVersion, targetOS, targetArch, "...")

	mod := "github.com/machbase/neo-crs"
	timestamp := time.Now().Format("2006-01-02T15:04:05")
	gitSHA := vLastCommit
	if len(gitSHA) > 8 {
		gitSHA = gitSHA[0:8]
	}
	goVersion := strings.TrimPrefix(runtime.Version(), "go")

	env := map[string]string{
		"GO111MODULE": "on",
		"CGO_ENABLED": "0",
		"GOOS":        targetOS,
		"GOARCH":      targetArch,
	}

	ldflags := strings.Join([]string{
		"-X", fmt.Sprintf("%s/mods.goVersionString=%s", mod, goVersion),
		"-X", fmt.Sprintf("%s/mods.versionString=%s", mod, vBuildVersion),
		"-X", fmt.Sprintf("%s/mods.versionGitSHA=%s", mod, gitSHA),
		"-X", fmt.Sprintf("%s/mods.buildTimestamp=%s", mod, timestamp),
	}, " ")
	args := []string{"build", "-ldflags", ldflags}

	out := filepath.Join(".", "tmp")
	if targetOS != runtime.GOOS || targetArch != runtime.GOARCH {
		out = filepath.Join(out, fmt.Sprintf("%s-%s", targetOS, targetArch))
	}
	exe := target
	if targetOS == "windows" {
		exe += ".exe"
	}
	args = append(args, "-o", filepath.Join(out, exe))
	args = append(args, fmt.Sprintf("./main/%s", target))

	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}
	if err := sh.RunWithV(env, "go", args...); err != nil {
		return err
	}
	fmt.Println("Build done.")
	return nil
}

func Test() error {
	mg.Deps(CheckTmp)

	env := map[string]string{
		"GO111MODULE": "on",
		"CGO_ENABLED": "0",
	}
	if err := sh.RunWithV(env, "go", "mod", "tidy"); err != nil {
		return err
	}
	if err := sh.RunWithV(env, "go", "test", "-cover", "-coverprofile", "./tmp/cover.out",
		"./booter/...",
		"./mods/...",
		"./main/...",
	); err != nil {
		return err
	}
	if output, err := sh.Output("go", "tool", "cover", "-func=./tmp/cover.out"); err != nil {
		return err
	} else {
		lines := strings.Split(output, "\n")
		fmt.Println(lines[len(lines)-1])
	}
	fmt.Println("Test done.")
	return nil
}

func CheckTmp() error {
	if err := os.MkdirAll("tmp", 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	return nil
}

// Package zips the binary of the host platform with the sample definitions.
func Package() error {
	mg.Deps(CleanPackage, Build)

	bdir := fmt.Sprintf("%s-%s-%s-%s", target, vBuildVersion, runtime.GOOS, runtime.GOARCH)
	if runtime.GOARCH == "arm" {
		bdir = fmt.Sprintf("%s-%s-%s-arm32", target, vBuildVersion, runtime.GOOS)
	}
	pdir := filepath.Join("packages", bdir)
	os.RemoveAll(pdir)
	if err := os.MkdirAll(pdir, 0755); err != nil {
		return err
	}

	exe := target
	if runtime.GOOS == "windows" {
		exe += ".exe"
	}
	if err := os.Rename(filepath.Join("tmp", exe), filepath.Join(pdir, exe)); err != nil {
		return err
	}
	if err := copyFile(filepath.Join("mods", "crs", "testdata", "definitions.xml"), filepath.Join(pdir, "definitions.xml")); err != nil {
		return err
	}

	if err := archivePackage(filepath.Join("packages", bdir+".zip"), pdir); err != nil {
		return err
	}
	return os.RemoveAll(pdir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func archivePackage(dst string, src ...string) error {
	archive, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer archive.Close()
	zipWriter := zip.NewWriter(archive)

	for _, file := range src {
		if err := archiveAddEntry(zipWriter, file, fmt.Sprintf("packages%s", string(os.PathSeparator))); err != nil {
			return err
		}
	}
	return zipWriter.Close()
}

func archiveAddEntry(zipWriter *zip.Writer, entry string, prefix string) error {
	stat, err := os.Stat(entry)
	if err != nil {
		return err
	}
	if stat.IsDir() {
		entries, err := os.ReadDir(entry)
		if err != nil {
			return err
		}
		for _, ent := range entries {
			if err := archiveAddEntry(zipWriter, filepath.Join(entry, ent.Name()), prefix); err != nil {
				return err
			}
		}
		return nil
	}
	fd, err := os.Open(entry)
	if err != nil {
		return err
	}
	defer fd.Close()

	entryName := strings.TrimPrefix(entry, prefix)
	fmt.Println("Archive", entryName)
	w, err := zipWriter.Create(entryName)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, fd)
	return err
}

func CleanPackage() error {
	entries, err := os.ReadDir("./packages")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, ent := range entries {
		if err = os.RemoveAll(filepath.Join("./packages", ent.Name())); err != nil {
			return err
		}
	}
	return nil
}

// GetVersion derives the build version from the latest v* tag,
// v0.0.0-snapshot when the repository has none.
func GetVersion() error {
	repo, err := git.PlainOpen(".")
	if err != nil {
		return err
	}
	headRef, err := repo.Head()
	if err != nil {
		return err
	}
	headCommit, err := repo.CommitObject(headRef.Hash())
	if err != nil {
		return err
	}
	vLastCommit = headCommit.Hash.String()

	var lastTag *object.Tag
	iter, err := repo.TagObjects()
	if err != nil {
		return err
	}
	iter.ForEach(func(tagObj *object.Tag) error {
		if !strings.HasPrefix(tagObj.Name, "v") {
			return nil
		}
		if lastTag == nil {
			lastTag = tagObj
		} else {
			lastCommit, _ := lastTag.Commit()
			tagCommit, _ := tagObj.Commit()
			if tagCommit.Author.When.Sub(lastCommit.Author.When) > 0 {
				lastTag = tagObj
			}
		}
		return nil
	})
	if lastTag == nil {
		vLastVersion = "v0.0.0"
		vIsNightly = true
		vBuildVersion = "v0.0.0-snapshot"
		return nil
	}

	lastTagCommit, err := lastTag.Commit()
	if err != nil {
		return err
	}
	vLastVersion = lastTag.Name
	vIsNightly = lastTagCommit.Hash.String() != vLastCommit
	lastTagSemVer, err := semver.NewVersion(vLastVersion)
	if err != nil {
		return err
	}

	if lastTagSemVer.Prerelease() == "" {
		if vIsNightly {
			vBuildVersion = fmt.Sprintf("v%d.%d.%d-snapshot", lastTagSemVer.Major(), lastTagSemVer.Minor(), lastTagSemVer.Patch()+1)
		} else {
			vBuildVersion = fmt.Sprintf("v%d.%d.%d", lastTagSemVer.Major(), lastTagSemVer.Minor(), lastTagSemVer.Patch())
		}
	} else {
		suffix := lastTagSemVer.Prerelease()
		if vIsNightly && strings.HasPrefix(suffix, "rc") {
			n, _ := strconv.Atoi(suffix[2:])
			suffix = fmt.Sprintf("rc%d-snapshot", n+1)
		}
		vBuildVersion = fmt.Sprintf("v%d.%d.%d-%s", lastTagSemVer.Major(), lastTagSemVer.Minor(), lastTagSemVer.Patch(), suffix)
	}
	return nil
}
