package instrument

import (
	"strings"

	"github.com/loykin/solarctl/internal/project"
)

// Injected module names. The leading underscore keeps them sorted ahead of
// user code and signals generated files.
const (
	LoggerModule     = "_s2d_logger"
	ScreenshotModule = "_s2d_screenshot"
	TouchModule      = "_s2d_touch"
)

// renderLogger produces the Lua module that redirects print() into the
// project's log file. The file is truncated by the runtime at each launch;
// the controller only ever reads it.
func renderLogger(p *project.Project) string {
	return expand(loggerLua, map[string]string{
		"@@LOG_FILE@@": p.LogPath(),
	})
}

func renderScreenshot(p *project.Project) string {
	return expand(screenshotLua, map[string]string{
		"@@SCREENSHOT_DIR@@": p.ScreenshotDir(),
		"@@CONTROL_FILE@@":   p.ControlFile(),
	})
}

func renderTouch(p *project.Project) string {
	return expand(touchLua, map[string]string{
		"@@CONTROL_FILE@@": p.ControlFile(),
		"@@INFO_FILE@@":    p.DisplayInfoFile(),
	})
}

func expand(tmpl string, vars map[string]string) string {
	out := tmpl
	for k, v := range vars {
		out = strings.ReplaceAll(out, k, v)
	}
	return out
}

const loggerLua = `-- Generated by solarctl: redirects print() to a log file the controller tails.
local logFile = "@@LOG_FILE@@"
local originalPrint = print

-- Truncate on simulator start so each launch begins a fresh log.
do
    local file = io.open(logFile, "w")
    if file then
        file:write("=== Solar2D Simulator Started ===\n")
        file:close()
    end
end

_G.print = function(...)
    local args = {...}
    local message = ""
    for i, v in ipairs(args) do
        if i > 1 then message = message .. "\t" end
        message = message .. tostring(v)
    end

    originalPrint(...)

    local file = io.open(logFile, "a")
    if file then
        file:write(message .. "\n")
        file:flush()
        file:close()
    end
end

print("[solarctl] logging initialized")
`

const screenshotLua = `-- Generated by solarctl: captures screenshots driven by the control file.
local lfs = require("lfs")
local json = require("json")
local screenshotDir = "@@SCREENSHOT_DIR@@"
local controlFile = "@@CONTROL_FILE@@"
local captureInterval = 100 -- ms between recorded frames
local screenshotCount = 0
local recordingEndTime = 0

-- Read the pending directive without consuming it; the directive is only
-- removed when it is addressed to this module.
local function readDirective()
    local file = io.open(controlFile, "r")
    if not file then return nil end
    local content = file:read("*all")
    file:close()
    local ok, directive = pcall(json.decode, content)
    if not ok then return nil end
    return directive
end

local function consume()
    os.remove(controlFile)
end

local function clearScreenshotDir()
    lfs.mkdir(screenshotDir)
    for file in lfs.dir(screenshotDir) do
        if file ~= "." and file ~= ".." then
            os.remove(screenshotDir .. "/" .. file)
        end
    end
end

local function isRecording()
    return system.getTimer() < recordingEndTime
end

local function copyFile(src, dst)
    local infile = io.open(src, "rb")
    if not infile then return false end
    local content = infile:read("*all")
    infile:close()

    local outfile = io.open(dst, "wb")
    if not outfile then return false end
    outfile:write(content)
    outfile:close()
    return true
end

local function saveFrame(filename)
    display.save(display.currentStage, {
        filename = filename,
        baseDir = system.TemporaryDirectory,
        captureOffscreenArea = false,
        isFullResolution = false
    })
    local tempPath = system.pathForFile(filename, system.TemporaryDirectory)
    if tempPath then
        if copyFile(tempPath, screenshotDir .. "/" .. filename) then
            os.remove(tempPath)
        end
    end
end

local function captureFrame()
    if not isRecording() then return end
    screenshotCount = screenshotCount + 1
    saveFrame(string.format("screenshot_%03d.jpg", screenshotCount))
end

local function checkControl()
    local d = readDirective()
    if not d or not d.kind then return end

    if d.kind == "start_recording" then
        consume()
        screenshotCount = 0
        recordingEndTime = system.getTimer() + (d.duration_sec * 1000)
        print("[solarctl] recording for " .. d.duration_sec .. "s")
    elseif d.kind == "extend_recording" then
        consume()
        local newEnd = system.getTimer() + (d.duration_sec * 1000)
        if newEnd > recordingEndTime then recordingEndTime = newEnd end
        print("[solarctl] recording extended (next frame #" .. (screenshotCount + 1) .. ")")
    elseif d.kind == "stop_recording" then
        consume()
        recordingEndTime = 0
        print("[solarctl] recording stopped at frame #" .. screenshotCount)
    elseif d.kind == "capture" then
        consume()
        saveFrame("screenshot_latest.jpg")
        print("[solarctl] on-demand capture saved")
    end
end

clearScreenshotDir()
print("[solarctl] screenshot module initialized: " .. screenshotDir)

timer.performWithDelay(captureInterval, captureFrame, 0)
timer.performWithDelay(500, checkControl, 0)
`

const touchLua = `-- Generated by solarctl: synthesizes touch events from control directives.
local json = require("json")
local controlFile = "@@CONTROL_FILE@@"
local infoFile = "@@INFO_FILE@@"
local checkInterval = 100

local touchTarget = nil
local touchStartX, touchStartY = 0, 0

local function readDirective()
    local file = io.open(controlFile, "r")
    if not file then return nil end
    local content = file:read("*all")
    file:close()
    local ok, directive = pcall(json.decode, content)
    if not ok then return nil end
    return directive
end

local function consume()
    os.remove(controlFile)
end

local function hasTouchListener(obj)
    if obj.touch_handler then return true end
    if obj._tableListeners and obj._tableListeners.touch then return true end
    if obj._functionListeners and obj._functionListeners.touch then return true end
    return false
end

-- Topmost touchable object at (x, y); groups are traversed back to front.
local function findHitObject(group, x, y)
    if not group or not group.numChildren then return nil end
    for i = group.numChildren, 1, -1 do
        local child = group[i]
        if child and child.isVisible ~= false then
            if child.numChildren then
                local hit = findHitObject(child, x, y)
                if hit then return hit end
            end
            if child.contentBounds then
                local bounds = child.contentBounds
                if x >= bounds.xMin and x <= bounds.xMax and
                   y >= bounds.yMin and y <= bounds.yMax then
                    if hasTouchListener(child) then
                        return child
                    end
                end
            end
        end
    end
    return nil
end

local function dispatchTouch(phase, x, y)
    local target = nil
    if phase == "began" then
        target = findHitObject(display.getCurrentStage(), x, y)
        if target then
            touchTarget = target
            touchStartX, touchStartY = x, y
        end
    else
        target = touchTarget
        if phase == "ended" then
            touchTarget = nil
        end
    end

    local event = {
        name = "touch",
        phase = phase,
        x = x,
        y = y,
        xStart = touchStartX or x,
        yStart = touchStartY or y,
        time = system.getTimer(),
        target = target
    }

    if target then
        target:dispatchEvent(event)
    else
        Runtime:dispatchEvent(event)
    end
end

local function writeDisplayInfo()
    local info = {
        contentWidth = display.contentWidth,
        contentHeight = display.contentHeight,
        actualContentWidth = display.actualContentWidth,
        actualContentHeight = display.actualContentHeight,
        screenOriginX = display.screenOriginX,
        screenOriginY = display.screenOriginY
    }
    local file = io.open(infoFile, "w")
    if file then
        file:write(json.encode(info))
        file:close()
    end
end

local function toContent(xPercent, yPercent)
    return display.contentWidth * xPercent / 100, display.contentHeight * yPercent / 100
end

local function executeTap(x, y)
    print("[solarctl] tap at (" .. x .. ", " .. y .. ")")
    dispatchTouch("began", x, y)
    timer.performWithDelay(50, function()
        dispatchTouch("ended", x, y)
    end)
end

local function executeDrag(x1, y1, x2, y2, duration)
    print("[solarctl] drag (" .. x1 .. "," .. y1 .. ") -> (" .. x2 .. "," .. y2 .. ") over " .. duration .. "ms")
    local steps = math.max(1, math.floor(duration / 16))
    local stepDelay = duration / steps
    dispatchTouch("began", x1, y1)
    for i = 1, steps do
        timer.performWithDelay(math.floor(stepDelay * i), function()
            local t = i / steps
            local x = x1 + (x2 - x1) * t
            local y = y1 + (y2 - y1) * t
            dispatchTouch("moved", x, y)
            if i == steps then
                timer.performWithDelay(16, function()
                    dispatchTouch("ended", x2, y2)
                end)
            end
        end)
    end
end

local function checkControl()
    local d = readDirective()
    if not d or not d.kind then return end

    if d.kind == "tap" then
        consume()
        local x, y = toContent(d.center_x, d.center_y)
        executeTap(x, y)
    elseif d.kind == "drag" then
        consume()
        local x1, y1 = toContent(d.from_x, d.from_y)
        local x2, y2 = toContent(d.to_x, d.to_y)
        executeDrag(x1, y1, x2, y2, d.duration_ms or 250)
    end
end

writeDisplayInfo()
print("[solarctl] touch module initialized")

timer.performWithDelay(checkInterval, checkControl, 0)
`
